package totals

// Field alias lists, highest priority first. The first entry of each list is
// the current panel field name; later entries are names older panels wrote.

// Income fields. Per-person income is preferred pre-aggregated; the
// social-security/pension/other parts are summed only when the aggregate is
// absent or zero.
var (
	aliasIncomeA   = []string{"inc_A", "income_a_total", "a_income"}
	aliasIncomeASS = []string{"a_ss", "a_social_security"}
	aliasIncomeAPN = []string{"a_pn", "a_pension"}
	aliasIncomeAOT = []string{"a_other", "a_other_income"}

	aliasIncomeB   = []string{"inc_B", "income_b_total", "b_income"}
	aliasIncomeBSS = []string{"b_ss", "b_social_security"}
	aliasIncomeBPN = []string{"b_pn", "b_pension"}
	aliasIncomeBOT = []string{"b_other", "b_other_income"}

	aliasHousehold = []string{"household_income", "hh_income"}
	aliasVABenA    = []string{"va_benefit_a", "a_va_benefit", "a_va"}
	aliasVABenB    = []string{"va_benefit_b", "b_va_benefit", "b_va"}
	aliasRMMonthly = []string{"rm_monthly_income", "reverse_mortgage_monthly"}
)

// Monthly cost fields.
var (
	aliasCareCost   = []string{"care_total", "care_cost_monthly", "care_cost"}
	aliasHomeCost   = []string{"home_monthly", "home_monthly_cost"}
	aliasModMonthly = []string{"mod_monthly", "home_mod_monthly"}
	aliasOtherCost  = []string{"other_monthly", "other_monthly_cost"}
)

// Asset fields and their gating flags.
var (
	aliasAssetsCommon   = []string{"assets_common", "liquid_assets"}
	aliasAssetsDetailed = []string{"assets_detailed", "assets_less_common", "assets_other"}
	aliasHomeSaleNet    = []string{"home_sale_net", "sale_proceeds_net"}
	aliasApplySale      = []string{"apply_sale_to_assets", "sale_to_assets"}
	aliasRMLump         = []string{"rm_lump_applied", "reverse_mortgage_lump"}
	aliasRMFees         = []string{"rm_fees_oop", "reverse_mortgage_fees"}
	aliasModUpfront     = []string{"mod_upfront_cost", "home_mod_upfront"}
	aliasDeductMod      = []string{"deduct_mod_from_assets", "mod_from_assets"}
)
