package recommend

// AnswerSet maps question identifiers to the raw answer a user gave. Values
// arrive from the wizard as strings, lists, or scalars and are immutable input
// to one recommendation run.
type AnswerSet map[string]any

// QuestionDef describes one wizard question: its prompt text and which answer
// substrings trigger which condition category.
type QuestionDef struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Triggers map[string]string `json:"triggers"` // answer substring -> condition category
}

// QuestionDefs indexes question definitions by identifier.
type QuestionDefs map[string]QuestionDef

// Rule is one entry of the recommendation table: a human-authored criteria
// description, the narrative template used when the rule wins, and the care
// outcome it declares (optional; the fallback rule defaults to in-home care).
type Rule struct {
	Criteria        string `json:"criteria"`
	MessageTemplate string `json:"message_template"`
	Outcome         string `json:"outcome,omitempty"`
}

// RuleTable is the recommendation configuration loaded once at startup.
type RuleTable struct {
	DecisionPrecedence        []string            `json:"decision_precedence"`
	FinalRecommendation       map[string]Rule     `json:"final_recommendation"`
	GreetingTemplates         []string            `json:"greeting_templates"`
	PreferenceClauseTemplates map[string][]string `json:"preference_clause_templates"`
	Scoring                   map[string][]string `json:"scoring"` // outcome category -> condition categories counted toward it
}

// Result is one immutable recommendation: the chosen care outcome, the derived
// condition flags and per-category scores, the reasons shown to the user, and
// the filled narrative.
type Result struct {
	Outcome   string         `json:"outcome"`
	Flags     []string       `json:"flags"`
	Scores    map[string]int `json:"scores"`
	Reasons   []string       `json:"reasons"`
	Narrative string         `json:"narrative"`
}

// Care outcome categories.
const (
	OutcomeInHome         = "in_home"
	OutcomeAssistedLiving = "assisted_living"
	OutcomeMemoryCare     = "memory_care"
)

// Condition flags derived from answers. SevereCognitiveRisk is recognized by
// the rule walk but is not produced by answer derivation today; config
// loading surfaces that gap as a warning.
const (
	FlagHighMobilityDependence   = "high_mobility_dependence"
	FlagModerateCognitiveDecline = "moderate_cognitive_decline"
	FlagSevereCognitiveRisk      = "severe_cognitive_risk"
)

// FallbackRuleName is the rule used when no precedence entry matches.
const FallbackRuleName = "in_home_with_support_fallback"
