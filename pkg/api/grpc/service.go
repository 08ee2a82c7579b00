package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "rpncalc.v1.Calculator"

// CalculatorServer is the server API for the Calculator service. Requests and
// responses are protobuf Structs whose fields are documented per method on
// Server.
type CalculatorServer interface {
	Convert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Calculate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCalculation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCalculations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCalculation(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(CalculatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CalculatorServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(CalculatorServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var calculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Convert", CalculatorServer.Convert),
		unaryMethod("Evaluate", CalculatorServer.Evaluate),
		unaryMethod("Calculate", CalculatorServer.Calculate),
		unaryMethod("GetCalculation", CalculatorServer.GetCalculation),
		unaryMethod("ListCalculations", CalculatorServer.ListCalculations),
		unaryMethod("DeleteCalculation", CalculatorServer.DeleteCalculation),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rpncalc/v1/calculator.proto",
}

// RegisterCalculatorServer registers srv on s.
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&calculatorServiceDesc, srv)
}

// Client is a client for the Calculator service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Convert(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Convert", in, opts...)
}

func (c *Client) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Evaluate", in, opts...)
}

func (c *Client) Calculate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Calculate", in, opts...)
}

func (c *Client) GetCalculation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetCalculation", in, opts...)
}

func (c *Client) ListCalculations(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListCalculations", in, opts...)
}

func (c *Client) DeleteCalculation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "DeleteCalculation", in, opts...)
}
