// Package work defines the WorkItem domain entity and the resource budget
// that constrains how many items may be coordinated at once.
package work

import (
	"fmt"

	"github.com/swarmgate/swarmgate/internal/domain"
)

// Priority represents the urgency tier of a work item.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns the sort rank of a priority; lower sorts first.
// Unknown priorities rank below low so malformed input never jumps the queue.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether p is a known priority tier.
func (p Priority) Valid() bool {
	return p.Rank() < 4
}

// Item is a single unit of requested work. Immutable once submitted.
type Item struct {
	Kind              string   `json:"kind"`
	Description       string   `json:"description"`
	Payload           string   `json:"payload,omitempty"`
	Priority          Priority `json:"priority"`
	Domain            string   `json:"domain"`
	EstimatedDuration float64  `json:"estimated_duration"` // seconds
	Dependencies      []string `json:"dependencies,omitempty"`
}

// Validate checks required fields on an Item.
func (i *Item) Validate() error {
	if i.Kind == "" {
		return fmt.Errorf("%w: kind is required", domain.ErrValidation)
	}
	if i.Priority == "" {
		return fmt.Errorf("%w: priority is required", domain.ErrValidation)
	}
	if !i.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, i.Priority)
	}
	if i.EstimatedDuration < 0 {
		return fmt.Errorf("%w: estimated_duration must be >= 0", domain.ErrValidation)
	}
	return nil
}

// Domains returns the distinct domain names across items, in input order.
func Domains(items []Item) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for i := range items {
		d := items[i].Domain
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// Budget is the process-wide resource budget for a coordination window.
type Budget struct {
	MaxConcurrentItems   int     `json:"max_concurrent_items"`
	MaxBatchSize         int     `json:"max_batch_size"`
	MaxResponseTime      float64 `json:"max_response_time"`     // seconds
	MaxResourceUsage     float64 `json:"max_resource_usage"`    // 0..1
	CurrentResourceUsage float64 `json:"current_resource_usage"` // 0..1
}

// DefaultBudget returns the stock budget. The batch size default of 6 is the
// upper bound; research-tuned optimum is 4 and callers may pass that instead.
func DefaultBudget() Budget {
	return Budget{
		MaxConcurrentItems: 10,
		MaxBatchSize:       6,
		MaxResponseTime:    300,
		MaxResourceUsage:   0.8,
	}
}

// Violated reports whether the budget's resource ceiling is already exceeded.
func (b Budget) Violated() bool {
	return b.MaxResourceUsage > 0 && b.CurrentResourceUsage > b.MaxResourceUsage
}
