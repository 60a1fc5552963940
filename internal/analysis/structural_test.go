package analysis

import (
	"fmt"
	"testing"

	"sentinel/internal/testkit"
)

func TestRunStructuralRisk_IdentifierColumns(t *testing.T) {
	rows := make([][]string, 30)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("cust_%04d", i), fmt.Sprintf("%d", i%3)}
	}
	f := testkit.Frame(t, []string{"customer_id", "bucket"}, rows)

	result := RunStructuralRisk(f, "")

	idColumns := result["id_columns"].([]map[string]any)
	if len(idColumns) != 1 {
		t.Fatalf("id_columns = %v, want one entry", idColumns)
	}
	if idColumns[0]["column"] != "customer_id" {
		t.Errorf("Flagged column = %v, want customer_id", idColumns[0]["column"])
	}
	if !idColumns[0]["name_hint"].(bool) {
		t.Error("customer_id should carry a name hint")
	}
	if !result["high_structural_risk"].(bool) {
		t.Error("An identifier column should raise structural risk")
	}
}

func TestRunStructuralRisk_RepeatedIdentifiers(t *testing.T) {
	f := testkit.Frame(t, []string{"account_id"}, [][]string{
		{"a1"}, {"a2"}, {"a2"}, {"a3"},
	})

	result := RunStructuralRisk(f, "")

	repeated := result["repeated_entity_identifiers"].([]map[string]any)
	if len(repeated) != 1 {
		t.Fatalf("repeated_entity_identifiers = %v, want one entry", repeated)
	}
	if repeated[0]["duplicate_identifier_rows"] != 1 {
		t.Errorf("duplicate_identifier_rows = %v, want 1", repeated[0]["duplicate_identifier_rows"])
	}
}

func TestRunStructuralRisk_MonotonicTimestamp(t *testing.T) {
	rows := make([][]string, 20)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("2024-01-%02d", i+1), fmt.Sprintf("%d", i%4)}
	}
	f := testkit.Frame(t, []string{"created_at", "value"}, rows)

	result := RunStructuralRisk(f, "")

	candidates := result["timestamp_leakage_candidates"].([]map[string]any)
	if len(candidates) != 1 || candidates[0]["column"] != "created_at" {
		t.Fatalf("timestamp_leakage_candidates = %v, want created_at", candidates)
	}
	if !candidates[0]["monotonic"].(bool) {
		t.Error("Sorted dates should read as monotonic")
	}
	if !result["high_structural_risk"].(bool) {
		t.Error("A monotonic timestamp should raise structural risk")
	}
}

func TestRunStructuralRisk_TargetTimestampIgnored(t *testing.T) {
	f := testkit.Frame(t, []string{"when"}, [][]string{
		{"2024-01-01"}, {"2024-01-02"},
	})
	result := RunStructuralRisk(f, "when")
	if n := result.ListLen("timestamp_leakage_candidates"); n != 0 {
		t.Errorf("Target column should not be a timestamp candidate, got %d", n)
	}
}

func TestRunStructuralRisk_DuplicateRows(t *testing.T) {
	rows := make([][]string, 10)
	for i := range rows {
		rows[i] = []string{"same", "row"}
	}
	f := testkit.Frame(t, []string{"a", "b"}, rows)

	result := RunStructuralRisk(f, "")

	if result["duplicate_rows"] != 9 {
		t.Errorf("duplicate_rows = %v, want 9", result["duplicate_rows"])
	}
	if result["duplicate_ratio"] != 0.9 {
		t.Errorf("duplicate_ratio = %v, want 0.9", result["duplicate_ratio"])
	}
	if !result["high_structural_risk"].(bool) {
		t.Error("90% duplicate rows should raise structural risk")
	}
}

func TestRunStructuralRisk_EmptyFrameSkips(t *testing.T) {
	f := testkit.Frame(t, []string{"a"}, nil)
	if !RunStructuralRisk(f, "").IsSkipped() {
		t.Error("Empty frame should skip")
	}
}

func TestHasIDHint(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"user_id", true},
		{"UUID", true},
		{"Email_Address", true},
		{"amount", false},
		{"bid_price", true},
	}
	for _, tt := range tests {
		if got := hasIDHint(tt.name); got != tt.want {
			t.Errorf("hasIDHint(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
