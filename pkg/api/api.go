// Package api implements the REST API handlers for converting, evaluating and
// recording expressions.
package api

import (
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lemonberrylabs/rpncalc/pkg/expr"
	"github.com/lemonberrylabs/rpncalc/pkg/store"
	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// MaxBodySize bounds request bodies; expressions are short.
const MaxBodySize = 64 * 1024

// Options configures the API server.
type Options struct {
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// Server is the HTTP API server.
type Server struct {
	app   *fiber.App
	store *store.Store
}

// New creates a new API server.
func New(s *store.Store, opts Options) *Server {
	srv := &Server{store: s}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             MaxBodySize,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}

	// Stateless API
	app.Post("/v1/convert", srv.convert)
	app.Post("/v1/evaluate", srv.evaluate)

	// Calculations API
	app.Post("/v1/calculations", srv.createCalculation)
	app.Get("/v1/calculations", srv.listCalculations)
	app.Get("/v1/calculations/:id", srv.getCalculation)
	app.Delete("/v1/calculations/:id", srv.deleteCalculation)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Serve serves HTTP on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

// --- Stateless Handlers ---

type convertRequest struct {
	Expression string `json:"expression"`
}

func (s *Server) convert(c *fiber.Ctx) error {
	var req convertRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, fmt.Sprintf("invalid request body: %v", err))
	}
	if expr.Trim(req.Expression) == "" {
		return badRequest(c, "expression is required")
	}

	postfix, err := expr.ConvertString(req.Expression)
	if err != nil {
		return expressionError(c, err)
	}

	return c.JSON(fiber.Map{
		"expression":    req.Expression,
		"postfix":       []string(postfix),
		"postfixString": postfix.String(),
	})
}

type evaluateRequest struct {
	Postfix string   `json:"postfix"`
	Tokens  []string `json:"tokens"`
}

func (s *Server) evaluate(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, fmt.Sprintf("invalid request body: %v", err))
	}
	if req.Postfix != "" && len(req.Tokens) > 0 {
		return badRequest(c, "postfix and tokens are mutually exclusive")
	}

	tokens := req.Tokens
	if req.Postfix != "" {
		tokens = expr.Tokenize(req.Postfix)
	}

	result, err := expr.Evaluate(tokens)
	if err != nil {
		return expressionError(c, err)
	}

	return c.JSON(fiber.Map{
		"postfix": expr.Postfix(tokens).String(),
		"result":  result,
	})
}

// --- Calculation Handlers ---

func (s *Server) createCalculation(c *fiber.Ctx) error {
	var req convertRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, fmt.Sprintf("invalid request body: %v", err))
	}
	expression := expr.Trim(req.Expression)
	if expression == "" {
		return badRequest(c, "expression is required")
	}

	// Failed calculations are recorded as well; the record carries the error.
	calc, err := s.store.Calculate(expression)
	if err != nil && types.AsExpressionError(err) == nil {
		return c.Status(500).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    500,
				"message": err.Error(),
				"status":  "INTERNAL",
			},
		})
	}

	status := 201
	if calc.State == store.CalculationFailed {
		status = 200
	}
	return c.Status(status).JSON(CalculationToJSON(calc))
}

func (s *Server) getCalculation(c *fiber.Ctx) error {
	calc, err := s.store.GetCalculation(c.Params("id"))
	if err != nil {
		return notFound(c, err)
	}
	return c.JSON(CalculationToJSON(calc))
}

func (s *Server) listCalculations(c *fiber.Ctx) error {
	calcs := s.store.ListCalculations()

	items := make([]fiber.Map, len(calcs))
	for i, calc := range calcs {
		items[i] = CalculationToJSON(calc)
	}

	return c.JSON(fiber.Map{
		"calculations": items,
	})
}

func (s *Server) deleteCalculation(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.store.DeleteCalculation(id); err != nil {
		return notFound(c, err)
	}
	return c.JSON(fiber.Map{
		"id":      id,
		"deleted": true,
	})
}

// --- Helpers ---

// CalculationToJSON renders a stored calculation for API responses.
func CalculationToJSON(calc *store.Calculation) fiber.Map {
	result := fiber.Map{
		"id":         calc.ID,
		"expression": calc.Expression,
		"state":      calc.State,
		"createTime": calc.CreateTime.Format(time.RFC3339),
	}

	if calc.State == store.CalculationSucceeded {
		result["postfix"] = calc.PostfixString()
		result["result"] = calc.Result
	}
	if calc.Error != nil {
		result["error"] = fiber.Map{
			"kind":    calc.Error.Kind,
			"message": calc.Error.Message,
		}
	}

	return result
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(400).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    400,
			"message": msg,
			"status":  "INVALID_ARGUMENT",
		},
	})
}

func notFound(c *fiber.Ctx, err error) error {
	return c.Status(404).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    404,
			"message": err.Error(),
			"status":  "NOT_FOUND",
		},
	})
}

// expressionError reports a conversion or evaluation failure. Partial output
// is never included.
func expressionError(c *fiber.Ctx, err error) error {
	body := fiber.Map{
		"code":    400,
		"message": err.Error(),
		"status":  "INVALID_ARGUMENT",
	}
	if ee := types.AsExpressionError(err); ee != nil {
		body["kind"] = ee.Kind
		if ee.Token != "" {
			body["token"] = ee.Token
		}
	}
	return c.Status(400).JSON(fiber.Map{"error": body})
}
