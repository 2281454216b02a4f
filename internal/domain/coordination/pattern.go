package coordination

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// PatternKey is the structured composite key for a learned pattern:
// the canonical domain set, the item count, and the strategy used.
// Using a struct instead of an ad-hoc string avoids canonicalization bugs
// (domain order, separator collisions).
type PatternKey struct {
	Domains   []string
	ItemCount int
	Strategy  Strategy
}

// NewPatternKey builds a key with the domain list sorted into canonical order.
// The input slice is not modified.
func NewPatternKey(domains []string, itemCount int, strategy Strategy) PatternKey {
	sorted := make([]string, len(domains))
	copy(sorted, domains)
	sort.Strings(sorted)
	return PatternKey{Domains: sorted, ItemCount: itemCount, Strategy: strategy}
}

// String renders the storage form: join(sort(domains),"+") + "_" + count + "_" + strategy.
func (k PatternKey) String() string {
	return fmt.Sprintf("%s_%d_%s", strings.Join(k.Domains, "+"), k.ItemCount, k.Strategy)
}

// Pattern is a learned statistic for one (domain set, item count, strategy)
// combination. Created on the first completed coordination for its key and
// updated, never deleted, on every subsequent completion.
type Pattern struct {
	Domains     []string  `json:"domains"`
	ItemCount   int       `json:"item_count"`
	Strategy    Strategy  `json:"strategy"`
	SuccessRate float64   `json:"success_rate"` // 0..1
	AvgDuration float64   `json:"avg_duration"` // seconds
	UsageCount  int       `json:"usage_count"`
	LastUsed    time.Time `json:"last_used"`
	Confidence  float64   `json:"confidence"` // 0..1
}

// Key returns the structured key for this pattern.
func (p *Pattern) Key() PatternKey {
	return NewPatternKey(p.Domains, p.ItemCount, p.Strategy)
}

// DomainOverlap returns the Jaccard overlap ratio between the pattern's
// domains and the requested domains: |intersection| / |union|.
func (p *Pattern) DomainOverlap(domains []string) float64 {
	if len(p.Domains) == 0 || len(domains) == 0 {
		return 0
	}
	set := make(map[string]bool, len(p.Domains))
	for _, d := range p.Domains {
		set[d] = true
	}
	union := make(map[string]bool, len(p.Domains)+len(domains))
	for _, d := range p.Domains {
		union[d] = true
	}
	inter := 0
	for _, d := range domains {
		if set[d] {
			inter++
		}
		union[d] = true
	}
	return float64(inter) / float64(len(union))
}
