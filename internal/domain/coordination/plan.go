package coordination

import "github.com/swarmgate/swarmgate/internal/domain/work"

// Plan is the ordered batch plan handed to the external executor.
// Created once per coordination request, immutable thereafter.
type Plan struct {
	Batches            [][]work.Item `json:"batches"`
	Strategy           Strategy      `json:"strategy"`
	EstimatedTotalTime float64       `json:"estimated_total_time"` // seconds
	Degraded           bool          `json:"degraded"`
}

// ItemCount returns the total number of items across all batches.
func (p *Plan) ItemCount() int {
	n := 0
	for _, b := range p.Batches {
		n += len(b)
	}
	return n
}
