package coordination

// Alternative is a runner-up pattern offered alongside a recommendation.
type Alternative struct {
	Strategy    Strategy `json:"strategy"`
	Domains     []string `json:"domains"`
	ItemCount   int      `json:"item_count"`
	Score       float64  `json:"score"`
	SuccessRate float64  `json:"success_rate"`
}

// Recommendation is the advisory output for the next strategy selection.
// RecommendedStrategy is nil when no historical pattern matched the request.
type Recommendation struct {
	RecommendedStrategy *Strategy     `json:"recommended_strategy"`
	Confidence          float64       `json:"confidence"`
	SuccessProbability  float64       `json:"success_probability"`
	AvgDuration         float64       `json:"avg_duration"`
	BasedOn             string        `json:"based_on,omitempty"` // matched pattern key
	Alternatives        []Alternative `json:"alternatives,omitempty"`
}
