package coordination

// Summary aggregates the event log into headline numbers.
type Summary struct {
	TotalCoordinations int     `json:"total_coordinations"` // completed (terminal) coordinations
	Completed          int     `json:"completed"`
	Failed             int     `json:"failed"`
	InFlight           int     `json:"in_flight"` // starts without a terminal event
	SuccessRate        float64 `json:"success_rate"`
	AvgDuration        float64 `json:"avg_duration"` // seconds, over events with known duration
}

// GroupStats holds per-domain or per-strategy aggregates.
type GroupStats struct {
	Count       int     `json:"count"`
	SuccessRate float64 `json:"success_rate"`
	AvgDuration float64 `json:"avg_duration"` // seconds
}

// Analytics is the read-model returned by the analytics query surface.
type Analytics struct {
	Summary       Summary               `json:"summary"`
	DomainStats   map[string]GroupStats `json:"domain_stats"`
	StrategyStats map[string]GroupStats `json:"strategy_stats"`
	TopPatterns   []Pattern             `json:"top_patterns"`
}
