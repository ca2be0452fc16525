package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	applog "stockbook/internal/log"
)

func TestEntriesAreJSONLines(t *testing.T) {
	var buf bytes.Buffer
	old := applog.SetOutput(&buf)
	defer applog.SetOutput(old)

	applog.Audit(nil, "stock.adjust", map[string]any{"qty": 5})
	applog.Warn(nil, "audit.write.fail", errors.New("disk full"), nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d: %q", len(lines), buf.String())
	}
	var first struct {
		Action string         `json:"action"`
		Kind   string         `json:"kind"`
		Level  string         `json:"level"`
		TS     string         `json:"ts"`
		Fields map[string]any `json:"fields"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first.Action != "stock.adjust" || first.Kind != "audit" || first.Level != "info" || first.TS == "" {
		t.Fatalf("unexpected entry: %+v", first)
	}
	if first.Fields["qty"] != float64(5) {
		t.Fatalf("fields lost: %+v", first.Fields)
	}
	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if second["level"] != "warning" || second["err"] != "disk full" {
		t.Fatalf("unexpected entry: %v", second)
	}
}
