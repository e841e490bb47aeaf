package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"careplan-backend/internal/recommend"
	"careplan-backend/internal/sessions"
	"careplan-backend/internal/totals"
)

func TestWriteCSVIncludesFigures(t *testing.T) {
	sess := sessions.Session{ID: "sess-1"}
	tot := totals.Result{
		IncomeTotal:     2500,
		CostTotal:       4800,
		AssetsEffective: 46000,
		Gap:             2300,
		MonthsRunway:    20,
		RunwayYears:     1,
		RunwayMonths:    8,
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sess, tot); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	got := map[string]string{}
	for _, row := range rows[1:] {
		got[row[0]] = row[1]
	}
	if got["monthly_gap"] != "2300" {
		t.Fatalf("expected monthly_gap 2300, got %q", got["monthly_gap"])
	}
	if got["runway_months"] != "20" {
		t.Fatalf("expected runway_months 20, got %q", got["runway_months"])
	}
	if _, ok := got["recommended_care_type"]; ok {
		t.Fatalf("expected no recommendation rows without a stored recommendation")
	}
}

func TestWriteCSVIncludesRecommendationWhenPresent(t *testing.T) {
	sess := sessions.Session{
		ID: "sess-2",
		Recommendation: &recommend.Result{
			Outcome:   recommend.OutcomeMemoryCare,
			Reasons:   []string{"reason one", "reason two"},
			Narrative: "A narrative.",
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sess, totals.Result{}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "recommended_care_type,memory_care") {
		t.Fatalf("missing outcome row: %s", out)
	}
	if !strings.Contains(out, "reason one; reason two") {
		t.Fatalf("missing joined reasons: %s", out)
	}
}

func TestBuildPDFProducesDocument(t *testing.T) {
	sess := sessions.Session{
		ID: "sess-3",
		Recommendation: &recommend.Result{
			Outcome:   recommend.OutcomeInHome,
			Narrative: "Staying home with support looks workable.",
		},
	}
	body, err := BuildPDF(sess, totals.Result{IncomeTotal: 2500, CostTotal: 4800, Gap: 2300})
	if err != nil {
		t.Fatalf("BuildPDF: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatalf("expected PDF header in %d-byte document", len(body))
	}
}
