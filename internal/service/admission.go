package service

import (
	"fmt"
	"sync"

	"github.com/swarmgate/swarmgate/internal/config"
)

// AdmissionReason classifies an admission decision.
type AdmissionReason string

const (
	ReasonOK             AdmissionReason = "ok"
	ReasonInvalidCount   AdmissionReason = "invalid_count"
	ReasonOverCapacity   AdmissionReason = "over_capacity"
	ReasonBusy           AdmissionReason = "busy"
	ReasonBudgetExceeded AdmissionReason = "budget_exceeded"
)

// AdmissionDecision is the structured result of an admission check.
type AdmissionDecision struct {
	Allowed       bool            `json:"allowed"`
	Reason        AdmissionReason `json:"reason"`
	Message       string          `json:"message"`
	EstimatedCost float64         `json:"estimated_cost"`
}

// AdmissionError is returned when a coordination request is rejected.
// All admission rejections are recoverable; the caller may retry later or
// shrink the request.
type AdmissionError struct {
	Decision AdmissionDecision
}

// Error implements the error interface.
func (e *AdmissionError) Error() string {
	return fmt.Sprintf("admission rejected (%s): %s", e.Decision.Reason, e.Decision.Message)
}

// AdmissionService validates proposed coordination requests against hard
// limits and tracks the open coordination window. The window counter is the
// only mutable shared state in the engine; a single mutex guards it.
type AdmissionService struct {
	cfg config.Admission

	mu          sync.Mutex
	openWindows int
}

// NewAdmissionService creates an AdmissionService from config.
func NewAdmissionService(cfg config.Admission) *AdmissionService {
	return &AdmissionService{cfg: cfg}
}

// CanAdmit checks a proposed item count against hard limits. It has no side
// effects; callers open the window explicitly via BeginWindow.
func (s *AdmissionService) CanAdmit(itemCount int) AdmissionDecision {
	if itemCount <= 0 {
		return AdmissionDecision{
			Reason:  ReasonInvalidCount,
			Message: fmt.Sprintf("item count must be positive, got %d", itemCount),
		}
	}
	if itemCount > s.cfg.MaxConcurrentItems {
		return AdmissionDecision{
			Reason:  ReasonOverCapacity,
			Message: fmt.Sprintf("%d items exceeds the limit of %d", itemCount, s.cfg.MaxConcurrentItems),
		}
	}
	if s.openWindowCount() >= s.cfg.MaxOpenWindows {
		return AdmissionDecision{
			Reason:  ReasonBusy,
			Message: "a coordination window is already open",
		}
	}
	cost := s.EstimateCost(itemCount)
	if cost > s.cfg.BudgetWarnThreshold {
		return AdmissionDecision{
			Reason:        ReasonBudgetExceeded,
			Message:       fmt.Sprintf("estimated cost %.0f exceeds threshold %.0f", cost, s.cfg.BudgetWarnThreshold),
			EstimatedCost: cost,
		}
	}
	return AdmissionDecision{Allowed: true, Reason: ReasonOK, Message: "ok", EstimatedCost: cost}
}

// EstimateCost returns the token cost estimate for coordinating itemCount
// items: base + n*perItem + min(n*perItemOverhead, overheadCap).
func (s *AdmissionService) EstimateCost(itemCount int) float64 {
	overhead := float64(itemCount) * s.cfg.PerItemOverhead
	if overhead > s.cfg.OverheadCap {
		overhead = s.cfg.OverheadCap
	}
	return s.cfg.BaseCost + float64(itemCount)*s.cfg.PerItemCost + overhead
}

// BeginWindow opens a coordination window.
func (s *AdmissionService) BeginWindow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openWindows++
}

// EndWindow closes a coordination window, flooring the counter at zero.
func (s *AdmissionService) EndWindow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openWindows > 0 {
		s.openWindows--
	}
}

// OpenWindows returns the number of currently open coordination windows.
func (s *AdmissionService) OpenWindows() int {
	return s.openWindowCount()
}

func (s *AdmissionService) openWindowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openWindows
}
