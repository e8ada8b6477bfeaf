package blocks

import (
	"testing"

	"github.com/goliatone/go-blockstore/pkg/domain"
)

func tuningSchema() *domain.BlockSchema {
	return &domain.BlockSchema{
		Fields: domain.JSONMap{
			domain.SchemaKeyProperties: map[string]any{
				"workers": map[string]any{"title": "Workers", "type": "integer", "default": int64(4)},
				"host":    map[string]any{"title": "Host", "type": "string"},
			},
		},
	}
}

func TestApplyDefaultsFillsAbsentKeys(t *testing.T) {
	out, err := applyDefaults(tuningSchema(), map[string]any{"host": "db1"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out["host"] != "db1" {
		t.Fatalf("unexpected host %v", out["host"])
	}
	if out["workers"] != int64(4) {
		t.Fatalf("absent key should take the default, got %v", out["workers"])
	}
}

func TestApplyDefaultsDocumentWins(t *testing.T) {
	out, err := applyDefaults(tuningSchema(), map[string]any{"host": "db1", "workers": float64(12)})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out["workers"] != float64(12) {
		t.Fatalf("stored value should win over the default, got %v", out["workers"])
	}
}

func TestApplyDefaultsWithoutSchema(t *testing.T) {
	data := map[string]any{"host": "db1"}
	out, err := applyDefaults(nil, data)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out["host"] != "db1" || len(out) != 1 {
		t.Fatalf("unexpected output %v", out)
	}
}
