// Package totals derives the affordability projection for a planning session:
// monthly income and cost totals, effective liquid assets, the monthly gap,
// and how many months of a shortfall the assets can cover.
package totals

// Result holds one affordability computation. It is derived on demand from a
// Snapshot and never stored; computing it twice over the same snapshot yields
// identical values.
type Result struct {
	IncomeTotal     int64 `json:"incomeTotal"`
	CostTotal       int64 `json:"costTotal"`
	AssetsEffective int64 `json:"assetsEffective"`
	Gap             int64 `json:"gap"`
	MonthsRunway    int64 `json:"monthsRunway"`
	RunwayYears     int64 `json:"runwayYears"`
	RunwayMonths    int64 `json:"runwayMonths"`
}

// Compute evaluates the snapshot into totals. It is a pure function: missing
// or malformed fields coerce to zero/false and never produce an error.
func Compute(s Snapshot) Result {
	incomeA := personIncome(s, aliasIncomeA, aliasIncomeASS, aliasIncomeAPN, aliasIncomeAOT)
	incomeB := personIncome(s, aliasIncomeB, aliasIncomeBSS, aliasIncomeBPN, aliasIncomeBOT)

	incomeTotal := incomeA +
		incomeB +
		s.Amount(0, aliasHousehold...) +
		s.Amount(0, aliasVABenA...) +
		s.Amount(0, aliasVABenB...) +
		s.Amount(0, aliasRMMonthly...)

	costTotal := s.Amount(0, aliasCareCost...) +
		s.Amount(0, aliasHomeCost...) +
		s.Amount(0, aliasModMonthly...) +
		s.Amount(0, aliasOtherCost...)

	assets := s.Amount(0, aliasAssetsCommon...) + s.Amount(0, aliasAssetsDetailed...)
	if s.Flag(false, aliasApplySale...) {
		assets += s.Amount(0, aliasHomeSaleNet...)
	}
	assets += s.Amount(0, aliasRMLump...)
	assets -= s.Amount(0, aliasRMFees...)
	if s.Flag(false, aliasDeductMod...) {
		assets -= s.Amount(0, aliasModUpfront...)
	}

	gap := costTotal - incomeTotal

	// Runway is meaningless without both a shortfall and positive assets.
	// Negative assets are reported as-is but never divided.
	var months int64
	if gap > 0 && assets > 0 {
		months = assets / gap
	}

	return Result{
		IncomeTotal:     incomeTotal,
		CostTotal:       costTotal,
		AssetsEffective: assets,
		Gap:             gap,
		MonthsRunway:    months,
		RunwayYears:     months / 12,
		RunwayMonths:    months % 12,
	}
}

// personIncome prefers the pre-aggregated field; the component parts are used
// only when the aggregate is absent or zero.
func personIncome(s Snapshot, aggregate, ss, pension, other []string) int64 {
	if agg := s.Amount(0, aggregate...); agg != 0 {
		return agg
	}
	return s.Amount(0, ss...) + s.Amount(0, pension...) + s.Amount(0, other...)
}
