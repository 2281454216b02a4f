package service

import (
	"context"
	"fmt"

	sgotel "github.com/swarmgate/swarmgate/internal/adapter/otel"
	"github.com/swarmgate/swarmgate/internal/domain/coordination"
	"github.com/swarmgate/swarmgate/internal/domain/work"
)

// CoordinatorService is the engine facade: it chains admission, strategy
// selection, and batch planning into one coordination request, and fronts the
// reporting and query surfaces. It plans and learns; it never executes work.
type CoordinatorService struct {
	admission *AdmissionService
	strategy  *StrategyService
	planner   *PlannerService
	learner   *LearnerService
	insights  *InsightService
	analytics *AnalyticsService
	metrics   *sgotel.Metrics
}

// NewCoordinatorService wires the engine services together. metrics may be nil.
func NewCoordinatorService(
	admission *AdmissionService,
	strategy *StrategyService,
	planner *PlannerService,
	learner *LearnerService,
	insights *InsightService,
	analytics *AnalyticsService,
	metrics *sgotel.Metrics,
) *CoordinatorService {
	return &CoordinatorService{
		admission: admission,
		strategy:  strategy,
		planner:   planner,
		learner:   learner,
		insights:  insights,
		analytics: analytics,
		metrics:   metrics,
	}
}

// Coordinate validates and admits the request, selects a strategy, and emits
// a batch plan. Budget violations degrade the plan rather than rejecting it;
// hard admission limits reject with a structured *AdmissionError.
func (s *CoordinatorService) Coordinate(ctx context.Context, items []work.Item, budget *work.Budget) (*coordination.Plan, error) {
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}

	b := work.DefaultBudget()
	if budget != nil {
		b = *budget
	}

	decision := s.admission.CanAdmit(len(items))
	if !decision.Allowed {
		if s.metrics != nil {
			s.metrics.AdmissionsRejected.Add(ctx, 1)
		}
		return nil, &AdmissionError{Decision: decision}
	}

	selected := s.strategy.Select(len(items), work.Domains(items), b.Violated())
	plan := s.planner.Plan(items, b)

	// The planner judges batch shape; the selector judges request shape.
	// The more conservative of the two wins.
	plan.Strategy = escalate(plan.Strategy, selected)
	plan.Degraded = plan.Strategy == coordination.StrategyDegraded

	if s.metrics != nil {
		s.metrics.PlansCreated.Add(ctx, 1)
	}
	return &plan, nil
}

// ReportStart opens the coordination window and records the start event.
func (s *CoordinatorService) ReportStart(ctx context.Context, id string, itemCount int, domains []string, strategy coordination.Strategy) (string, error) {
	s.admission.BeginWindow()
	return s.learner.ReportStart(ctx, id, itemCount, domains, strategy)
}

// ReportComplete records the terminal event and closes the coordination
// window. Orphan completions leave the window counter alone; EndWindow floors
// at zero regardless.
func (s *CoordinatorService) ReportComplete(ctx context.Context, id string, success bool, errorMessage string) (*coordination.Event, error) {
	event, err := s.learner.ReportComplete(ctx, id, success, errorMessage)
	if event != nil && event.Duration != nil {
		s.admission.EndWindow()
	}
	return event, err
}

// CanAdmit exposes the admission check without side effects.
func (s *CoordinatorService) CanAdmit(itemCount int) AdmissionDecision {
	return s.admission.CanAdmit(itemCount)
}

// GetAnalytics returns the aggregated statistics read model.
func (s *CoordinatorService) GetAnalytics(ctx context.Context) (*coordination.Analytics, error) {
	return s.analytics.GetAnalytics(ctx)
}

// GenerateInsights runs an insight generation pass.
func (s *CoordinatorService) GenerateInsights(ctx context.Context) ([]coordination.Insight, error) {
	return s.insights.GenerateInsights(ctx)
}

// Recommend suggests a strategy for the given request shape from history.
func (s *CoordinatorService) Recommend(domains []string, itemCount int) coordination.Recommendation {
	return s.insights.Recommend(domains, itemCount)
}
