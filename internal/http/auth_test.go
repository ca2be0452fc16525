package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginSuccessFailAndThrottle(t *testing.T) {
	app := newApp(t)

	resp := call(t, app, "POST", "/api/auth/login", "", map[string]string{"email": adminEmail, "password": adminPassword})
	expect(t, resp, http.StatusOK)
	cookie := false
	for _, c := range resp.Cookies() {
		if c.Name == "token" && c.Value != "" && c.HttpOnly {
			cookie = true
		}
	}
	if !cookie {
		t.Fatal("expected an HttpOnly token cookie on login")
	}

	resp = call(t, app, "POST", "/api/auth/login", "", map[string]string{"email": adminEmail, "password": "wrong"})
	expect(t, resp, http.StatusUnauthorized)

	// limiter allows 5 attempts per window; two are already spent
	var last int
	for i := 0; i < 4; i++ {
		resp = call(t, app, "POST", "/api/auth/login", "", map[string]string{"email": adminEmail, "password": "wrong"})
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated attempts, got %d", last)
	}
}

func TestTokenCookieAuthenticates(t *testing.T) {
	app := newApp(t)
	tok := adminToken(t, app)

	req := httptest.NewRequest("GET", "/api/products", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	expect(t, resp, http.StatusOK)
}

func TestPendingAccountCannotSignIn(t *testing.T) {
	app := newApp(t)

	resp := call(t, app, "POST", "/api/auth/register", "", map[string]string{
		"email": "new@stockbook.test", "name": "New Hire", "password": "N3w!hire",
	})
	expect(t, resp, http.StatusCreated)
	var reg struct {
		Status string `json:"status"`
	}
	decode(t, resp, &reg)
	if reg.Status != "PENDING" {
		t.Fatalf("expected PENDING registration, got %q", reg.Status)
	}

	resp = call(t, app, "POST", "/api/auth/login", "", map[string]string{"email": "new@stockbook.test", "password": "N3w!hire"})
	expect(t, resp, http.StatusForbidden)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	app := newApp(t)
	resp := call(t, app, "POST", "/api/auth/register", "", map[string]string{
		"email": "weak@stockbook.test", "name": "Weak", "password": "password",
	})
	expect(t, resp, http.StatusBadRequest)
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newApp(t)
	resp := call(t, app, "POST", "/api/auth/logout", "", nil)
	expect(t, resp, http.StatusOK)
	for _, c := range resp.Cookies() {
		if c.Name == "token" && c.Value != "" {
			t.Fatalf("token cookie not cleared: %q", c.Value)
		}
	}
}
