package web

import (
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/rpncalc/pkg/store"
)

func setupTestApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()
	s := store.New()
	h := New(s)
	app := fiber.New()
	h.Register(app)
	return app, s
}

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestDashboardEmpty(t *testing.T) {
	app, _ := setupTestApp(t)

	code, html := get(t, app, "/ui")
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, html)
	}
	if !strings.Contains(html, "Dashboard") {
		t.Error("expected Dashboard in response")
	}
	if !strings.Contains(html, "No calculations yet") {
		t.Error("expected empty state message")
	}
}

func TestDashboardWithData(t *testing.T) {
	app, s := setupTestApp(t)

	s.Calculate("3 + 4 * 2")
	s.Calculate("10 / 0")

	code, html := get(t, app, "/ui")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	for _, want := range []string{"3 4 2 * +", "11", "Division by zero", "1 succeeded, 1 failed"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in response", want)
		}
	}
}

func TestCalculateForm(t *testing.T) {
	app, s := setupTestApp(t)

	form := url.Values{"expression": {"( 1 + 2 ) * 3"}}
	req := httptest.NewRequest("POST", "/ui/calculate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}

	calcs := s.ListCalculations()
	if len(calcs) != 1 {
		t.Fatalf("expected 1 calculation, got %d", len(calcs))
	}
	loc := resp.Header.Get("Location")
	if loc != "/ui/calculations/"+calcs[0].ID {
		t.Errorf("Location = %q", loc)
	}

	code, html := get(t, app, loc)
	if code != 200 {
		t.Fatalf("detail: expected 200, got %d", code)
	}
	if !strings.Contains(html, "1 2 + 3 *") || !strings.Contains(html, "SUCCEEDED") {
		t.Error("expected postfix and state on detail page")
	}
}

func TestCalculateFormFailed(t *testing.T) {
	app, s := setupTestApp(t)

	form := url.Values{"expression": {"10 / 0"}}
	req := httptest.NewRequest("POST", "/ui/calculate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}

	calcs := s.ListCalculations()
	if len(calcs) != 1 || calcs[0].State != store.CalculationFailed {
		t.Fatalf("expected one failed calculation, got %+v", calcs)
	}
	if loc := resp.Header.Get("Location"); loc != "/ui/calculations/"+calcs[0].ID {
		t.Errorf("Location = %q", loc)
	}
}

func TestDetailFailed(t *testing.T) {
	app, s := setupTestApp(t)

	calc, _ := s.Calculate("1 + ( 2")
	code, html := get(t, app, "/ui/calculations/"+calc.ID)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(html, "MismatchedParentheses") {
		t.Error("expected error kind on detail page")
	}
	if strings.Contains(html, "Postfix") {
		t.Error("failed calculation should not show postfix")
	}
}

func TestDetailNotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	code, _ := get(t, app, "/ui/calculations/missing")
	if code != 404 {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestRootRedirect(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 302 || resp.Header.Get("Location") != "/ui" {
		t.Errorf("expected redirect to /ui, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID = %q", got)
	}
}
