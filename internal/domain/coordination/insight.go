package coordination

import "time"

// InsightCategory classifies what an insight is about.
type InsightCategory string

const (
	InsightReliability  InsightCategory = "reliability"
	InsightOptimization InsightCategory = "optimization"
	InsightMonitoring   InsightCategory = "monitoring"
)

// Insight is a derived, human-readable observation about pattern performance.
// Insights are transient: they expire a fixed interval after creation and are
// garbage-collected on each generation pass.
type Insight struct {
	ID             string          `json:"id"`
	Category       InsightCategory `json:"category"`
	Description    string          `json:"description"`
	Recommendation string          `json:"recommendation"`
	ImpactScore    float64         `json:"impact_score"`
	Confidence     float64         `json:"confidence"`
	CreatedAt      time.Time       `json:"created_at"`
	AppliesTo      []string        `json:"applies_to,omitempty"`
}

// Expired reports whether the insight is older than ttl at the given time.
func (i *Insight) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(i.CreatedAt) > ttl
}
