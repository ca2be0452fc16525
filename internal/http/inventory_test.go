package handlers_test

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestStockAdjustments(t *testing.T) {
	app := newApp(t)
	tok := adminToken(t, app)
	p := createProduct(t, app, tok, "Pipe Wrench", 10)

	resp := call(t, app, "POST", "/api/products/"+p.ID+"/incoming", tok, map[string]any{
		"type": "Restock", "qty": 5, "source": "Supplier A",
	})
	expect(t, resp, http.StatusOK)
	var after productOut
	decode(t, resp, &after)
	if after.TotalQty != 15 || after.OnhandQty != 15 {
		t.Fatalf("restock: got total=%d onhand=%d", after.TotalQty, after.OnhandQty)
	}

	resp = call(t, app, "POST", "/api/products/"+p.ID+"/outgoing", tok, map[string]any{
		"type": "Sale", "qty": 4, "destination": "Walk-in",
	})
	expect(t, resp, http.StatusOK)
	decode(t, resp, &after)
	if after.TotalQty != 15 || after.OnhandQty != 11 {
		t.Fatalf("sale: got total=%d onhand=%d", after.TotalQty, after.OnhandQty)
	}
}

func TestOversellRejected(t *testing.T) {
	app := newApp(t)
	tok := adminToken(t, app)
	p := createProduct(t, app, tok, "Elbow Joint", 10)

	resp := call(t, app, "POST", "/api/products/"+p.ID+"/outgoing", tok, map[string]any{"type": "Sale", "qty": 15})
	expect(t, resp, http.StatusConflict)
	var out struct {
		Available float64 `json:"available"`
		Shortfall float64 `json:"shortfall"`
	}
	decode(t, resp, &out)
	if out.Available != 10 || out.Shortfall != 5 {
		t.Fatalf("expected available=10 shortfall=5, got %+v", out)
	}
	if got := getProduct(t, app, tok, p.ID); got.OnhandQty != 10 {
		t.Fatalf("rejected sale changed stock: onhand=%d", got.OnhandQty)
	}
}

func TestAdjustmentValidation(t *testing.T) {
	app := newApp(t)
	tok := adminToken(t, app)
	p := createProduct(t, app, tok, "Bolt", 10)
	url := "/api/products/" + p.ID

	cases := []struct {
		name string
		path string
		body map[string]any
	}{
		{"fractional", url + "/outgoing", map[string]any{"type": "Sale", "qty": 2.5}},
		{"zero", url + "/incoming", map[string]any{"type": "Restock", "qty": 0}},
		{"negative", url + "/incoming", map[string]any{"type": "Return", "qty": -3}},
		{"wrong direction", url + "/incoming", map[string]any{"type": "Sale", "qty": 1}},
		{"unknown type", url + "/outgoing", map[string]any{"type": "Gift", "qty": 1}},
	}
	for _, tc := range cases {
		resp := call(t, app, "POST", tc.path, tok, tc.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, resp.StatusCode)
		}
	}
	if got := getProduct(t, app, tok, p.ID); got.OnhandQty != 10 || got.TotalQty != 10 {
		t.Fatalf("invalid input changed stock: %+v", got)
	}

	expect(t, call(t, app, "POST", "/api/products/missing/incoming", tok, map[string]any{"qty": 1}), http.StatusNotFound)
}

func TestLedgerEndpoints(t *testing.T) {
	app := newApp(t)
	tok := adminToken(t, app)
	p := createProduct(t, app, tok, "Wire Spool", 20)

	expect(t, call(t, app, "POST", "/api/products/"+p.ID+"/outgoing", tok, map[string]any{"type": "Other", "qty": 5, "destination": "Site B"}), http.StatusOK)
	expect(t, call(t, app, "POST", "/api/products/"+p.ID+"/incoming", tok, map[string]any{"type": "Return", "qty": 2, "source": "Site B"}), http.StatusOK)

	resp := call(t, app, "GET", "/api/products/"+p.ID+"/ledger", tok, nil)
	expect(t, resp, http.StatusOK)
	var l struct {
		Opening float64 `json:"opening"`
		Closing float64 `json:"closing"`
		Rows    []any   `json:"rows"`
	}
	decode(t, resp, &l)
	if l.Closing != 17 || l.Opening != 20 || len(l.Rows) != 2 {
		t.Fatalf("unexpected ledger: %+v", l)
	}

	resp = call(t, app, "GET", "/api/products/"+p.ID+"/ledger.xlsx", tok, nil)
	expect(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) < 4 || string(body[:2]) != "PK" {
		t.Fatal("ledger export is not an xlsx archive")
	}

	resp = call(t, app, "GET", "/api/products/export.xlsx", tok, nil)
	expect(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "products.xlsx") {
		t.Fatalf("unexpected disposition %q", cd)
	}
}
