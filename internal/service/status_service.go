package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fuzumoe/crawlplan-backend/internal/metrics"
	"github.com/fuzumoe/crawlplan-backend/internal/model"
	"github.com/fuzumoe/crawlplan-backend/internal/planner"
	"github.com/fuzumoe/crawlplan-backend/internal/probe"
	"github.com/fuzumoe/crawlplan-backend/internal/repository"
)

// StatusService is the status check facade: the one place where probe, local
// state, drift classification and range planning meet. Every caller that
// wants to know "what should happen next" goes through Check.
type StatusService interface {
	Check(ctx context.Context) (*model.RecommendationReport, error)
	CalculateRange(ctx context.Context, in model.CalculateRangeInput) (*model.CrawlingRangeResponse, error)
}

type statusService struct {
	prober    probe.SiteProber
	snapshots repository.SnapshotRepository
	states    repository.CrawlStateRepository
	policy    model.PlannerPolicy
	metrics   *metrics.Metrics

	// mu serializes Check calls: the drift snapshot is a single mutable
	// record and classification must be atomic with its update.
	mu sync.Mutex
}

// NewStatusService constructs a StatusService.
func NewStatusService(
	prober probe.SiteProber,
	snapshots repository.SnapshotRepository,
	states repository.CrawlStateRepository,
	policy model.PlannerPolicy,
	m *metrics.Metrics,
) StatusService {
	return &statusService{
		prober:    prober,
		snapshots: snapshots,
		states:    states,
		policy:    policy,
		metrics:   m,
	}
}

func (s *statusService) Check(ctx context.Context) (*model.RecommendationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	checkedAt := time.Now().UTC()

	site, err := s.prober.Probe(ctx)
	if err != nil {
		// Probe failures are terminal for this check; retrying is the
		// prober's concern. No classification, no snapshot update.
		report := &model.RecommendationReport{
			Action:    model.ActionInvestigate,
			Priority:  model.PriorityHigh,
			Reason:    fmt.Sprintf("site probe failed: %v", err),
			NextSteps: []string{"check site availability", "re-run the status check once the probe succeeds"},
			CheckedAt: checkedAt,
		}
		s.metrics.IncCheck(string(report.Action))
		return report, nil
	}
	if !site.IsAccessible {
		// The site answered but not usefully (non-2xx, bad payload). Same
		// handling as a probe failure: classifying drift against zeroed
		// site numbers would wipe the baseline with garbage.
		report := &model.RecommendationReport{
			Action:    model.ActionInvestigate,
			Priority:  model.PriorityHigh,
			Reason:    fmt.Sprintf("site is not accessible (probed at %s)", site.ProbedAt.Format(time.RFC3339)),
			NextSteps: []string{"check site availability", "re-run the status check once the probe succeeds"},
			CheckedAt: checkedAt,
		}
		s.metrics.IncCheck(string(report.Action))
		return report, nil
	}

	state, err := s.states.Get()
	if err != nil {
		return nil, fmt.Errorf("read local crawl state: %w", err)
	}
	local := state.ToSummary()

	prev, err := s.snapshots.Get()
	if err != nil {
		return nil, fmt.Errorf("read drift snapshot: %w", err)
	}
	drift := planner.ClassifyDrift(prev, site)
	if err := s.snapshots.Put(&model.DriftSnapshot{
		LastEstimatedTotalProducts: site.EstimatedTotalProducts,
		LastTotalPages:             site.TotalPages,
		LastCheckedAt:              site.ProbedAt,
	}); err != nil {
		// An unpersisted classification would corrupt the next comparison,
		// so the whole check fails rather than report on top of it.
		return nil, fmt.Errorf("persist drift snapshot: %w", err)
	}

	report := s.buildReport(site, local, drift, checkedAt)
	s.metrics.IncCheck(string(report.Action))
	return report, nil
}

// buildReport folds drift and plan into the canonical recommendation.
// Precedence: serious drift beats everything, then local inconsistency, then
// the plan outcome.
func (s *statusService) buildReport(site model.SiteProbe, local model.LocalSummary, drift planner.DriftResult, checkedAt time.Time) *model.RecommendationReport {
	report := &model.RecommendationReport{
		DataChange: &drift.Status,
		CheckedAt:  checkedAt,
	}

	if drift.Severity == model.SeverityHigh || drift.Severity == model.SeverityCritical {
		report.Action = model.ActionInvestigate
		report.Priority = severityToPriority(drift.Severity)
		report.Reason = drift.Recommendation.Description
		report.NextSteps = drift.Recommendation.ActionSteps
		return report
	}

	if local.TotalSavedProducts > site.EstimatedTotalProducts && site.EstimatedTotalProducts > 0 {
		report.Action = model.ActionCleanup
		report.Priority = model.PriorityMedium
		report.Reason = fmt.Sprintf(
			"local store holds %d products but the site reports only about %d; duplicates or stale rows are likely",
			local.TotalSavedProducts, site.EstimatedTotalProducts)
		report.NextSteps = []string{"run a local deduplication pass", "re-check status afterwards"}
		return report
	}

	plan, err := planner.Plan(site, local, s.policy)
	if err != nil {
		report.Action = model.ActionInvestigate
		switch {
		case errors.Is(err, planner.ErrSiteShrunk):
			report.Priority = model.PriorityHigh
			report.Reason = fmt.Sprintf("planner refused to extend the range: %v", err)
			report.NextSteps = []string{"confirm the site's page count", "re-crawl from scratch if pages were really removed"}
		case errors.Is(err, planner.ErrSiteInaccessible):
			report.Priority = model.PriorityHigh
			report.Reason = err.Error()
			report.NextSteps = []string{"check site availability", "re-run the status check once the probe succeeds"}
		default:
			report.Priority = model.PriorityCritical
			report.Reason = fmt.Sprintf("planning failed: %v", err)
			report.NextSteps = []string{"review planner configuration"}
		}
		return report
	}

	if plan.Pages == 0 {
		report.Action = model.ActionUpToDate
		report.Priority = model.PriorityLow
		report.Reason = plan.Rationale
		report.NextSteps = []string{"no crawl needed; check again later"}
		return report
	}

	report.Action = model.ActionCrawl
	report.Priority = model.PriorityMedium
	if local.LastCrawledPage == nil {
		report.Priority = model.PriorityHigh // nothing local yet
	}
	report.SuggestedRange = &plan.Range
	report.EstimatedNewItems = plan.EstimatedNewItems
	report.EfficiencyScore = efficiencyScore(plan, s.policy)
	report.Reason = plan.Rationale
	report.NextSteps = []string{
		fmt.Sprintf("crawl pages %d-%d", plan.Range.StartPage, plan.Range.EndPage),
	}
	if plan.DeferredPages > 0 {
		report.NextSteps = append(report.NextSteps,
			fmt.Sprintf("schedule a follow-up run for the %d deferred pages", plan.DeferredPages))
	}
	return report
}

func (s *statusService) CalculateRange(ctx context.Context, in model.CalculateRangeInput) (*model.CrawlingRangeResponse, error) {
	state, err := s.states.Get()
	if err != nil {
		return nil, fmt.Errorf("read local crawl state: %w", err)
	}
	local := state.ToSummary()

	site := syntheticProbe(in, s.policy)
	plan, err := planner.Plan(site, local, s.policy)
	if err != nil {
		return nil, err
	}

	var covered uint
	if local.LastCrawledPage != nil {
		covered = *local.LastCrawledPage
	}
	progress := model.RangeProgress{
		CoveredPages: covered,
		TotalPages:   site.TotalPages,
	}
	if site.TotalPages > 0 {
		progress.CoveragePercent = clamp01(float64(covered)/float64(site.TotalPages)) * 100
	}

	return &model.CrawlingRangeResponse{
		Range:    plan.Range,
		Progress: progress,
		SiteInfo: model.SiteInfo{
			TotalPages:             site.TotalPages,
			ProductsOnLastPage:     site.ProductsOnLastPage,
			EstimatedTotalProducts: site.EstimatedTotalProducts,
			IsAccessible:           site.IsAccessible,
		},
		LocalDBInfo: model.LocalDBInfo{
			TotalSavedProducts: local.TotalSavedProducts,
			LastCrawledPage:    local.LastCrawledPage,
			LastCrawlTime:      local.LastCrawlTime,
		},
		CrawlingInfo: model.CrawlingInfo{
			PagesToCrawl:      plan.Pages,
			DeferredPages:     plan.DeferredPages,
			EstimatedNewItems: plan.EstimatedNewItems,
			Mode:              s.policy.CrawlingMode,
		},
	}, nil
}

// syntheticProbe builds a probe from caller-supplied site numbers, estimating
// the product total the same way the planner estimates yield.
func syntheticProbe(in model.CalculateRangeInput, policy model.PlannerPolicy) model.SiteProbe {
	var est uint
	if in.TotalPagesOnSite > 0 {
		est = in.ProductsOnLastPage + (in.TotalPagesOnSite-1)*policy.ProductsPerPageAssumed
	}
	return model.SiteProbe{
		TotalPages:             in.TotalPagesOnSite,
		ProductsOnLastPage:     in.ProductsOnLastPage,
		EstimatedTotalProducts: est,
		IsAccessible:           true,
		ProbedAt:               time.Now().UTC(),
	}
}

// efficiencyScore is the advisory estimated-yield-per-scheduled-slot ratio,
// clamped to [0,1]. Never used for gating.
func efficiencyScore(plan *planner.RangePlan, policy model.PlannerPolicy) float64 {
	capacity := float64(plan.Pages) * float64(policy.ProductsPerPageAssumed)
	if capacity == 0 {
		return 0
	}
	return clamp01(float64(plan.EstimatedNewItems) / capacity)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func severityToPriority(sev model.DriftSeverity) model.RecommendationPriority {
	switch sev {
	case model.SeverityCritical:
		return model.PriorityCritical
	case model.SeverityHigh:
		return model.PriorityHigh
	case model.SeverityMedium:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}
