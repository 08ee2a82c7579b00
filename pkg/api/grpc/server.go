// Package grpcapi implements the Calculator gRPC service on top of the same
// converter, evaluator and history store as the HTTP API.
package grpcapi

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lemonberrylabs/rpncalc/pkg/expr"
	"github.com/lemonberrylabs/rpncalc/pkg/store"
	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// ErrorDomain is the ErrorInfo domain attached to expression failures.
const ErrorDomain = "rpncalc"

// Server implements the Calculator gRPC service.
type Server struct {
	store *store.Store
	grpc  *grpc.Server
}

// New creates a new gRPC server wrapping the given store.
func New(s *store.Store) *Server {
	srv := &Server{store: s}

	gs := grpc.NewServer()
	RegisterCalculatorServer(gs, srv)
	srv.grpc = gs

	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.grpc.Serve(lis)
}

// ServeListener serves gRPC requests on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// GracefulStop gracefully stops the gRPC server.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

// Stop stops the gRPC server immediately.
func (s *Server) Stop() {
	s.grpc.Stop()
}

// Convert takes {expression} and returns {postfix: [...], postfixString}.
func (s *Server) Convert(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	expression := stringField(req, "expression")
	if expr.Trim(expression) == "" {
		return nil, status.Error(codes.InvalidArgument, "expression is required")
	}

	postfix, err := expr.ConvertString(expression)
	if err != nil {
		return nil, expressionStatus(err)
	}

	return newStruct(map[string]interface{}{
		"expression":    expression,
		"postfix":       tokenList(postfix),
		"postfixString": postfix.String(),
	})
}

// Evaluate takes {postfix: "..."} or {tokens: [...]} and returns
// {result, resultString}. resultString is exact; result is a JSON number and
// loses precision beyond 2^53.
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	postfix := stringField(req, "postfix")
	tokens, err := stringListField(req, "tokens")
	if err != nil {
		return nil, err
	}
	if postfix != "" && len(tokens) > 0 {
		return nil, status.Error(codes.InvalidArgument, "postfix and tokens are mutually exclusive")
	}
	if postfix != "" {
		tokens = expr.Tokenize(postfix)
	}

	result, err := expr.Evaluate(tokens)
	if err != nil {
		return nil, expressionStatus(err)
	}

	return newStruct(map[string]interface{}{
		"postfix":      expr.Postfix(tokens).String(),
		"result":       result,
		"resultString": fmt.Sprintf("%d", result),
	})
}

// Calculate takes {expression}, records the calculation and returns it.
// Failed expressions are recorded too and returned with state FAILED.
func (s *Server) Calculate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	expression := expr.Trim(stringField(req, "expression"))
	if expression == "" {
		return nil, status.Error(codes.InvalidArgument, "expression is required")
	}

	calc, err := s.store.Calculate(expression)
	if err != nil && types.AsExpressionError(err) == nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return calculationToStruct(calc)
}

// GetCalculation takes {id} and returns the stored calculation.
func (s *Server) GetCalculation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	calc, err := s.store.GetCalculation(stringField(req, "id"))
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return calculationToStruct(calc)
}

// ListCalculations returns {calculations: [...]}, oldest first.
func (s *Server) ListCalculations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	calcs := s.store.ListCalculations()

	items := make([]interface{}, len(calcs))
	for i, calc := range calcs {
		items[i] = calculationToMap(calc)
	}

	return newStruct(map[string]interface{}{
		"calculations": items,
	})
}

// DeleteCalculation takes {id} and removes the calculation.
func (s *Server) DeleteCalculation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "id")
	if err := s.store.DeleteCalculation(id); err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return newStruct(map[string]interface{}{
		"id":      id,
		"deleted": true,
	})
}

// --- Internal helpers ---

// expressionStatus maps an expression failure to InvalidArgument with an
// ErrorInfo detail whose reason is the error kind.
func expressionStatus(err error) error {
	ee := types.AsExpressionError(err)
	if ee == nil {
		return status.Error(codes.Internal, err.Error())
	}

	st := status.New(codes.InvalidArgument, ee.Message)
	info := &errdetails.ErrorInfo{
		Reason: string(ee.Kind),
		Domain: ErrorDomain,
	}
	if ee.Token != "" {
		info.Metadata = map[string]string{"token": ee.Token}
	}
	withDetails, detailErr := st.WithDetails(info)
	if detailErr != nil {
		return st.Err()
	}
	return withDetails.Err()
}

func calculationToMap(calc *store.Calculation) map[string]interface{} {
	m := map[string]interface{}{
		"id":         calc.ID,
		"expression": calc.Expression,
		"state":      string(calc.State),
		"createTime": calc.CreateTime.Format(time.RFC3339),
	}
	if calc.State == store.CalculationSucceeded {
		m["postfix"] = calc.PostfixString()
		m["result"] = calc.Result
		m["resultString"] = fmt.Sprintf("%d", calc.Result)
	}
	if calc.Error != nil {
		m["error"] = map[string]interface{}{
			"kind":    string(calc.Error.Kind),
			"message": calc.Error.Message,
		}
	}
	return m
}

func calculationToStruct(calc *store.Calculation) (*structpb.Struct, error) {
	return newStruct(calculationToMap(calc))
}

func newStruct(m map[string]interface{}) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return st, nil
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func stringListField(req *structpb.Struct, key string) ([]string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a list of strings", key)
	}
	out := make([]string, len(list.GetValues()))
	for i, item := range list.GetValues() {
		sv, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "%s[%d] must be a string", key, i)
		}
		out[i] = sv.StringValue
	}
	return out, nil
}

func tokenList(p expr.Postfix) []interface{} {
	out := make([]interface{}, len(p))
	for i, tok := range p {
		out[i] = tok
	}
	return out
}
