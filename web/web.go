// Package web provides the embedded web UI for the calculator.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/rpncalc/pkg/expr"
	"github.com/lemonberrylabs/rpncalc/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the web UI pages.
type Handler struct {
	store   *store.Store
	funcMap template.FuncMap
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	Title string
	Data  interface{}
}

// New creates a new web UI handler.
func New(s *store.Store) *Handler {
	return &Handler{
		store: s,
		funcMap: template.FuncMap{
			"formatTime": formatTime,
			"timeAgo":    timeAgo,
			"stateClass": stateClass,
			"shortID":    shortID,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, page, title string, data interface{}) error {
	// Parse per page so define blocks do not collide across pages.
	tmpl, err := template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
	if err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pageData{Title: title, Data: data}); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.dashboard)
	app.Post("/ui/calculate", h.calculate)
	app.Get("/ui/calculations/:id", h.calculationDetail)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

// --- Page Data Types ---

type dashboardContent struct {
	Calculations   []*store.Calculation
	SucceededCount int
	FailedCount    int
}

type detailContent struct {
	Calculation *store.Calculation
}

// --- Handlers ---

func (h *Handler) dashboard(c *fiber.Ctx) error {
	calcs := h.store.ListCalculations()

	// Newest first
	reversed := make([]*store.Calculation, len(calcs))
	for i, calc := range calcs {
		reversed[len(calcs)-1-i] = calc
	}

	succeeded, failed := h.store.Counts()
	return h.render(c, "dashboard.html", "Dashboard", dashboardContent{
		Calculations:   reversed,
		SucceededCount: succeeded,
		FailedCount:    failed,
	})
}

func (h *Handler) calculate(c *fiber.Ctx) error {
	expression := expr.Trim(c.FormValue("expression"))
	if expression == "" {
		return c.Redirect("/ui")
	}

	// The error is recorded on the calculation and shown on its page.
	calc, _ := h.store.Calculate(expression)
	if calc == nil {
		return c.Redirect("/ui")
	}
	return c.Redirect("/ui/calculations/" + calc.ID)
}

func (h *Handler) calculationDetail(c *fiber.Ctx) error {
	calc, err := h.store.GetCalculation(c.Params("id"))
	if err != nil {
		return c.Status(404).SendString(err.Error())
	}
	return h.render(c, "detail.html", "Calculation", detailContent{Calculation: calc})
}

// --- Template Functions ---

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func stateClass(state store.CalculationState) string {
	switch state {
	case store.CalculationSucceeded:
		return "state-succeeded"
	case store.CalculationFailed:
		return "state-failed"
	default:
		return ""
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
