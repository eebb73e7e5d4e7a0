package inspect

// Severity ranks how urgent a finding is.
type Severity string

// Severities, from most to least urgent.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Category groups findings by the kind of defect.
type Category string

// Categories.
const (
	CategoryFunctionality Category = "functionality"
	CategoryAccessibility Category = "accessibility"
	CategoryPerformance   Category = "performance"
	CategorySEO           Category = "seo"
	CategoryUX            Category = "ux"
	CategorySecurity      Category = "security"
)

// Finding is one detected defect on a page. Findings carry their category
// and severity directly rather than encoding them in the detail text.
type Finding struct {
	Code             string   `json:"code"`
	Title            string   `json:"title"`
	Detail           string   `json:"detail"`
	Severity         Severity `json:"severity"`
	Category         Category `json:"category"`
	Recommendation   string   `json:"recommendation,omitempty"`
	AffectedElements string   `json:"affectedElements,omitempty"`
}
