package plot

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"sentinel/domain/report"
)

// Reports read back from JSONB storage decode feature entries as []any, not
// []map[string]any. The chart must come out identical either way.
func TestFeatureImportance_StableAcrossJSONStorage(t *testing.T) {
	rep := &report.Report{
		TargetDiagnostics: report.Result{
			"top_predictive_features": []map[string]any{
				{"feature": "signal", "score": 0.69},
				{"feature": "noise", "score": 0.01},
			},
		},
	}
	engine := NewEngine()
	ctx := context.Background()

	direct, err := engine.Generate(ctx, "", rep, "label", PlotFeatureImportance)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	raw, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("Failed to marshal report: %v", err)
	}
	var stored report.Report
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("Failed to unmarshal report: %v", err)
	}

	roundtrip, err := engine.Generate(ctx, "", &stored, "label", PlotFeatureImportance)
	if err != nil {
		t.Fatalf("Generate from stored report failed: %v", err)
	}
	if !bytes.Equal(direct, roundtrip) {
		t.Error("Feature importance chart changed after JSON storage round trip")
	}

	unavailable, err := engine.Generate(ctx, "", &report.Report{}, "label", PlotFeatureImportance)
	if err != nil {
		t.Fatalf("Generate with empty report failed: %v", err)
	}
	if bytes.Equal(roundtrip, unavailable) {
		t.Error("Stored report rendered the unavailable placeholder instead of the chart")
	}
}
