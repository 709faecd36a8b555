package domain

import "time"

// Recommendation is a single prioritized suggestion in the aggregate report,
// tagged with the section it was drawn from.
type Recommendation struct {
	Source   string `json:"source"`
	Priority string `json:"priority"`
	Text     string `json:"recommendation"`
}

// Report is the terminal structured output of a workflow: a weighted overall
// score, per-source scores, a bounded prioritized recommendation list, and
// the full per-source detail for audit. A degraded run produces the same
// shape with zeroed scores and Error set, so downstream consumers never need
// a separate error path.
type Report struct {
	OverallScore    float64                   `json:"overall_score"`
	SourceScores    map[string]float64        `json:"source_scores"`
	Recommendations []Recommendation          `json:"top_recommendations"`
	Findings        map[string]map[string]any `json:"detailed_findings,omitempty"`
	Metadata        map[string]any            `json:"metadata,omitempty"`
	Platform        string                    `json:"platform,omitempty"`
	Model           string                    `json:"model,omitempty"`
	GeneratedAt     time.Time                 `json:"generated_at"`
	Error           string                    `json:"error,omitempty"`
}

// Degraded reports whether this is an error-flagged result.
func (r *Report) Degraded() bool {
	return r != nil && r.Error != ""
}
