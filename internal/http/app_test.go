package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"stockbook/internal/config"
	"stockbook/internal/http/handlers"
	applog "stockbook/internal/log"
	"stockbook/internal/repos"
)

const (
	adminEmail    = "admin@stockbook.test"
	adminPassword = "Adm1n!pass"
)

// Full app with real routes over an in-memory database
func newApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := repos.Seed(context.Background(), db, adminEmail, adminPassword); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cfg := config.Config{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		DRPrefix:  "DR-ZK",
		LowStock:  5,
	}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB
	app.Use(requestid.New())
	handlers.Routes(app, handlers.NewDeps(db, cfg))
	return app
}

type logEntry struct {
	Level  string         `json:"level"`
	Kind   string         `json:"kind"`
	Action string         `json:"action"`
	Status int            `json:"status"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	old := applog.SetOutput(buf)
	defer applog.SetOutput(old)

	fn()

	buf.mu.Lock()
	defer buf.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

// call sends a JSON request with an optional bearer token.
func call(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func expect(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected %d, got %d body=%s", want, resp.StatusCode, string(body))
	}
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	resp := call(t, app, "POST", "/api/auth/login", "", map[string]string{"email": email, "password": password})
	expect(t, resp, http.StatusOK)
	var out struct {
		Token string `json:"token"`
	}
	decode(t, resp, &out)
	if out.Token == "" {
		t.Fatal("login returned no token")
	}
	return out.Token
}

func adminToken(t *testing.T, app *fiber.App) string {
	return login(t, app, adminEmail, adminPassword)
}

// employeeToken registers an employee, approves it as admin and signs in.
func employeeToken(t *testing.T, app *fiber.App, admin string) string {
	t.Helper()
	const email, pass = "clerk@stockbook.test", "Cl3rk!pass"
	resp := call(t, app, "POST", "/api/auth/register", "", map[string]string{"email": email, "name": "Clerk", "password": pass})
	expect(t, resp, http.StatusCreated)
	var reg struct {
		ID string `json:"id"`
	}
	decode(t, resp, &reg)
	expect(t, call(t, app, "POST", "/api/admin/registrations/"+reg.ID+"/approve", admin, nil), http.StatusOK)
	return login(t, app, email, pass)
}

type productOut struct {
	ID        string `json:"id"`
	Name      string `json:"product"`
	TotalQty  int    `json:"totalQty"`
	OnhandQty int    `json:"onhandQty"`
}

func createProduct(t *testing.T, app *fiber.App, token, name string, qty int) productOut {
	t.Helper()
	resp := call(t, app, "POST", "/api/products", token, map[string]any{
		"category": "Hardware", "product": name, "unit": "pc", "qty": qty, "unitPrice": "12.50",
	})
	expect(t, resp, http.StatusCreated)
	var p productOut
	decode(t, resp, &p)
	return p
}

func getProduct(t *testing.T, app *fiber.App, token, id string) productOut {
	t.Helper()
	resp := call(t, app, "GET", "/api/products/"+id, token, nil)
	expect(t, resp, http.StatusOK)
	var p productOut
	decode(t, resp, &p)
	return p
}
