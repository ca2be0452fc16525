package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type deliveryOut struct {
	ID     string `json:"id"`
	DRNo   string `json:"drNo"`
	Status string `json:"status"`
	Items  []struct {
		ID        string `json:"id"`
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
}

func createCustomer(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	resp := call(t, app, "POST", "/api/customers", token, map[string]string{
		"name": "Acme Builders", "address": "12 Rizal St", "contactNo": "09171234567",
	})
	expect(t, resp, http.StatusCreated)
	var c struct {
		ID string `json:"id"`
	}
	decode(t, resp, &c)
	return c.ID
}

func TestDeliveryLifecycle(t *testing.T) {
	app := newApp(t)
	tok := adminToken(t, app)
	cust := createCustomer(t, app, tok)
	p := createProduct(t, app, tok, "Cement Bag", 10)

	resp := call(t, app, "GET", "/api/deliveries/next-number", tok, nil)
	expect(t, resp, http.StatusOK)
	var next struct {
		DRNo string `json:"drNo"`
	}
	decode(t, resp, &next)

	resp = call(t, app, "POST", "/api/deliveries", tok, map[string]any{
		"customerId": cust,
		"items": []map[string]any{
			{"productId": p.ID, "quantity": 3},
			{"productId": p.ID, "quantity": 4},
		},
	})
	expect(t, resp, http.StatusCreated)
	var d deliveryOut
	decode(t, resp, &d)
	if d.DRNo != next.DRNo || !strings.HasPrefix(d.DRNo, "DR-ZK-") {
		t.Fatalf("expected DR number %s, got %s", next.DRNo, d.DRNo)
	}
	if d.Status != "Open" || len(d.Items) != 2 {
		t.Fatalf("unexpected delivery: %+v", d)
	}
	if got := getProduct(t, app, tok, p.ID); got.OnhandQty != 3 {
		t.Fatalf("expected onhand 3 after reserving 7, got %d", got.OnhandQty)
	}

	// a line that would oversell rejects the whole edit
	resp = call(t, app, "PUT", "/api/deliveries/"+d.ID, tok, map[string]any{
		"customerId": cust,
		"items": []map[string]any{
			{"id": d.Items[0].ID, "productId": p.ID, "quantity": 3},
			{"id": d.Items[1].ID, "productId": p.ID, "quantity": 8},
		},
	})
	expect(t, resp, http.StatusConflict)
	if got := getProduct(t, app, tok, p.ID); got.OnhandQty != 3 {
		t.Fatalf("rejected edit changed stock: onhand=%d", got.OnhandQty)
	}

	// shrinking a line gives stock back
	resp = call(t, app, "PUT", "/api/deliveries/"+d.ID, tok, map[string]any{
		"customerId": cust,
		"items": []map[string]any{
			{"id": d.Items[0].ID, "productId": p.ID, "quantity": 3},
		},
	})
	expect(t, resp, http.StatusOK)
	if got := getProduct(t, app, tok, p.ID); got.OnhandQty != 7 {
		t.Fatalf("expected onhand 7 after edit, got %d", got.OnhandQty)
	}

	resp = call(t, app, "POST", "/api/deliveries/"+d.ID+"/close", tok, nil)
	expect(t, resp, http.StatusOK)
	decode(t, resp, &d)
	if d.Status != "Closed" {
		t.Fatalf("expected Closed, got %s", d.Status)
	}

	expect(t, call(t, app, "POST", "/api/deliveries/"+d.ID+"/close", tok, nil), http.StatusConflict)
	expect(t, call(t, app, "PUT", "/api/deliveries/"+d.ID, tok, map[string]any{
		"customerId": cust,
		"items":      []map[string]any{{"productId": p.ID, "quantity": 1}},
	}), http.StatusConflict)
	expect(t, call(t, app, "POST", "/api/deliveries/discard", tok, map[string]any{"ids": []string{d.ID}}), http.StatusConflict)
}

func TestDiscardReleasesStock(t *testing.T) {
	app := newApp(t)
	tok := adminToken(t, app)
	cust := createCustomer(t, app, tok)
	p := createProduct(t, app, tok, "Copper Pipe", 6)

	resp := call(t, app, "POST", "/api/deliveries", tok, map[string]any{
		"customerId": cust,
		"items":      []map[string]any{{"productId": p.ID, "quantity": 6}},
	})
	expect(t, resp, http.StatusCreated)
	var d deliveryOut
	decode(t, resp, &d)
	if got := getProduct(t, app, tok, p.ID); got.OnhandQty != 0 {
		t.Fatalf("expected onhand 0, got %d", got.OnhandQty)
	}

	// no stock left for a second delivery
	resp = call(t, app, "POST", "/api/deliveries", tok, map[string]any{
		"customerId": cust,
		"items":      []map[string]any{{"productId": p.ID, "quantity": 1}},
	})
	expect(t, resp, http.StatusConflict)

	resp = call(t, app, "POST", "/api/deliveries/discard", tok, map[string]any{"ids": []string{d.ID}})
	expect(t, resp, http.StatusOK)
	var out struct {
		Deleted int `json:"deleted"`
	}
	decode(t, resp, &out)
	if out.Deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", out.Deleted)
	}
	if got := getProduct(t, app, tok, p.ID); got.OnhandQty != 6 {
		t.Fatalf("expected onhand 6 after discard, got %d", got.OnhandQty)
	}
	expect(t, call(t, app, "GET", "/api/deliveries/"+d.ID, tok, nil), http.StatusNotFound)
}

func TestCheckLine(t *testing.T) {
	app := newApp(t)
	tok := adminToken(t, app)
	p := createProduct(t, app, tok, "PVC Glue", 4)

	resp := call(t, app, "POST", "/api/deliveries/check-line", tok, map[string]any{"productId": p.ID, "quantity": 4})
	expect(t, resp, http.StatusOK)
	var out struct {
		OK        bool `json:"ok"`
		Available int  `json:"available"`
	}
	decode(t, resp, &out)
	if !out.OK || out.Available != 4 {
		t.Fatalf("unexpected check result: %+v", out)
	}

	expect(t, call(t, app, "POST", "/api/deliveries/check-line", tok, map[string]any{"productId": p.ID, "quantity": 5}), http.StatusConflict)
}

func TestDeliveryPrintView(t *testing.T) {
	app := newApp(t)
	tok := adminToken(t, app)
	cust := createCustomer(t, app, tok)
	p := createProduct(t, app, tok, "Faucet <Chrome>", 5)

	resp := call(t, app, "POST", "/api/deliveries", tok, map[string]any{
		"customerId": cust,
		"items":      []map[string]any{{"productId": p.ID, "quantity": 2}},
	})
	expect(t, resp, http.StatusCreated)
	var d deliveryOut
	decode(t, resp, &d)

	req := httptest.NewRequest("GET", "/deliveries/"+d.ID+"/print", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	expect(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	s := string(body)
	for _, want := range []string{d.DRNo, "Acme Builders", "25.00"} {
		if !strings.Contains(s, want) {
			t.Fatalf("print view missing %q", want)
		}
	}
	// template output is escaped
	if strings.Contains(s, "<Chrome>") || !strings.Contains(s, "&lt;Chrome&gt;") {
		t.Fatal("product name not escaped in print view")
	}

	req = httptest.NewRequest("GET", "/deliveries/missing/print", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	expect(t, resp, http.StatusNotFound)
}
