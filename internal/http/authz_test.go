package handlers_test

import (
	"net/http"
	"testing"
)

func TestAPIRequiresToken(t *testing.T) {
	app := newApp(t)
	for _, path := range []string{"/api/products", "/api/deliveries", "/api/dashboard", "/api/admin/users"} {
		expect(t, call(t, app, "GET", path, "", nil), http.StatusUnauthorized)
	}
	expect(t, call(t, app, "GET", "/api/products", "not-a-token", nil), http.StatusUnauthorized)
	expect(t, call(t, app, "GET", "/healthz", "", nil), http.StatusOK)
}

func TestAdminGuardRequiresAdmin(t *testing.T) {
	app := newApp(t)
	admin := adminToken(t, app)
	clerk := employeeToken(t, app, admin)

	for _, path := range []string{"/api/admin/users", "/api/admin/registrations", "/api/admin/logs"} {
		expect(t, call(t, app, "GET", path, clerk, nil), http.StatusForbidden)
		expect(t, call(t, app, "GET", path, admin, nil), http.StatusOK)
	}
	// employees still reach the regular API
	expect(t, call(t, app, "GET", "/api/products", clerk, nil), http.StatusOK)
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	app := newApp(t)
	admin := adminToken(t, app)

	resp := call(t, app, "GET", "/api/admin/users", admin, nil)
	expect(t, resp, http.StatusOK)
	var users []struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	decode(t, resp, &users)
	var self string
	for _, u := range users {
		if u.Email == adminEmail {
			self = u.ID
		}
	}
	if self == "" {
		t.Fatal("seeded admin not listed")
	}
	expect(t, call(t, app, "POST", "/api/admin/users/"+self+"/delete", admin, nil), http.StatusBadRequest)
}

func TestDashboardHidesActivityFromEmployees(t *testing.T) {
	app := newApp(t)
	admin := adminToken(t, app)
	clerk := employeeToken(t, app, admin)
	createProduct(t, app, admin, "Hammer", 3)

	var dash struct {
		TotalProducts  int   `json:"totalProducts"`
		LowStock       int   `json:"lowStock"`
		RecentActivity []any `json:"recentActivity"`
	}
	resp := call(t, app, "GET", "/api/dashboard", admin, nil)
	expect(t, resp, http.StatusOK)
	decode(t, resp, &dash)
	if dash.TotalProducts != 1 || dash.LowStock != 1 {
		t.Fatalf("unexpected dashboard counts: %+v", dash)
	}
	if len(dash.RecentActivity) == 0 {
		t.Fatal("admin should see recent activity")
	}

	dash.RecentActivity = nil
	resp = call(t, app, "GET", "/api/dashboard", clerk, nil)
	expect(t, resp, http.StatusOK)
	decode(t, resp, &dash)
	if len(dash.RecentActivity) != 0 {
		t.Fatalf("employee should not see activity, got %d entries", len(dash.RecentActivity))
	}
}

func TestDeletedAccountLosesAccess(t *testing.T) {
	app := newApp(t)
	admin := adminToken(t, app)

	const email, pass = "second@stockbook.test", "S3cond!pass"
	resp := call(t, app, "POST", "/api/auth/register", "", map[string]string{"email": email, "name": "Second Admin", "password": pass})
	expect(t, resp, http.StatusCreated)
	var reg struct {
		ID string `json:"id"`
	}
	decode(t, resp, &reg)
	expect(t, call(t, app, "POST", "/api/admin/registrations/"+reg.ID+"/approve", admin, map[string]string{"role": "ADMIN"}), http.StatusOK)
	second := login(t, app, email, pass)
	expect(t, call(t, app, "GET", "/api/admin/users", second, nil), http.StatusOK)

	expect(t, call(t, app, "POST", "/api/admin/users/"+reg.ID+"/delete", admin, nil), http.StatusOK)

	// the token is still signed and unexpired, the account is gone
	expect(t, call(t, app, "GET", "/api/admin/users", second, nil), http.StatusUnauthorized)
	expect(t, call(t, app, "POST", "/api/products", second, map[string]any{"product": "Ghost", "qty": 1}), http.StatusUnauthorized)

	resp = call(t, app, "GET", "/api/products", admin, nil)
	expect(t, resp, http.StatusOK)
	var products []productOut
	decode(t, resp, &products)
	if len(products) != 0 {
		t.Fatalf("deleted account created products: %+v", products)
	}
}
