package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"careplan-backend/internal/sessions"
	"careplan-backend/internal/totals"
)

// WriteCSV renders a session's affordability figures (and recommendation, when
// present) as a two-column report.
func WriteCSV(w io.Writer, sess sessions.Session, tot totals.Result) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"field", "value"},
		{"session_id", sess.ID},
		{"monthly_income_total", fmt.Sprintf("%d", tot.IncomeTotal)},
		{"monthly_cost_total", fmt.Sprintf("%d", tot.CostTotal)},
		{"effective_assets", fmt.Sprintf("%d", tot.AssetsEffective)},
		{"monthly_gap", fmt.Sprintf("%d", tot.Gap)},
		{"runway_months", fmt.Sprintf("%d", tot.MonthsRunway)},
		{"runway_years", fmt.Sprintf("%d", tot.RunwayYears)},
		{"runway_remainder_months", fmt.Sprintf("%d", tot.RunwayMonths)},
	}

	if rec := sess.Recommendation; rec != nil {
		rows = append(rows,
			[]string{"recommended_care_type", rec.Outcome},
			[]string{"recommendation_reasons", strings.Join(rec.Reasons, "; ")},
			[]string{"recommendation_narrative", rec.Narrative},
		)
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
