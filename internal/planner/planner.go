package planner

import (
	"fmt"

	"github.com/fuzumoe/crawlplan-backend/internal/model"
)

// RangePlan is the planner's answer: the range to crawl now, what had to be
// deferred, and an item-yield estimate. EstimatedNewItems is always an
// estimate derived from the products-per-page policy constant, never an
// authoritative count.
type RangePlan struct {
	Range             model.CrawlRange
	Pages             uint
	DeferredPages     uint
	EstimatedNewItems uint
	Rationale         string
}

// Plan decides what page range should be crawled next. It is a pure function
// of its inputs: same (site, local, policy) in, same plan out.
//
// Pages are numbered newest-first (page 1 is newest). A bootstrap or full run
// covers (1, min(total, limit)). An incremental run covers the gap of pages
// not yet absorbed into local coverage; when the gap exceeds the limit only
// limit pages are scheduled and the rest are reported as deferred, never
// silently dropped. Successive bounded runs walk the gap band: each plan
// resumes at the frontier the previous completed run reached (local.RangeEnd),
// so deferred pages land in a later range instead of the same newest pages
// being re-fetched.
func Plan(site model.SiteProbe, local model.LocalSummary, policy model.PlannerPolicy) (*RangePlan, error) {
	if err := policy.Validate(); err != nil {
		return nil, invalidPolicy(err.Error())
	}
	if !site.IsAccessible {
		return nil, fmt.Errorf("%w: probe at %s reported the site unreachable", ErrSiteInaccessible, site.ProbedAt.Format("2006-01-02 15:04:05"))
	}
	if site.TotalPages == 0 {
		return &RangePlan{Rationale: "site reports zero pages; nothing to crawl"}, nil
	}

	if local.LastCrawledPage == nil || policy.CrawlingMode == model.ModeFull {
		return fullPlan(site, policy), nil
	}
	return incrementalPlan(site, local, policy)
}

// fullPlan covers the newest pages up to the per-run limit. Used for the very
// first crawl and for explicit full mode.
func fullPlan(site model.SiteProbe, policy model.PlannerPolicy) *RangePlan {
	pages := min(site.TotalPages, policy.PageRangeLimit)
	plan := &RangePlan{
		Range:         model.CrawlRange{StartPage: 1, EndPage: pages},
		Pages:         pages,
		DeferredPages: site.TotalPages - pages,
	}
	plan.EstimatedNewItems = estimateItems(plan.Range, site, policy)
	if plan.DeferredPages > 0 {
		plan.Rationale = fmt.Sprintf(
			"full run over the newest %d of %d pages; %d older pages deferred to a later run (yield is an estimate at %d products/page)",
			pages, site.TotalPages, plan.DeferredPages, policy.ProductsPerPageAssumed)
	} else {
		plan.Rationale = fmt.Sprintf(
			"full run over all %d pages (yield is an estimate at %d products/page)",
			pages, policy.ProductsPerPageAssumed)
	}
	return plan
}

// incrementalPlan covers only the pages that appeared since local coverage.
func incrementalPlan(site model.SiteProbe, local model.LocalSummary, policy model.PlannerPolicy) (*RangePlan, error) {
	last := *local.LastCrawledPage

	if site.TotalPages < last {
		// The site lost pages relative to what we covered. A small loss can
		// be absorbed when auto-adjust is on; anything past the threshold is
		// handed to the drift detector instead of planned over.
		lost := last - site.TotalPages
		if lost > thresholdPages(policy) || !policy.AutoAdjustRange {
			return nil, fmt.Errorf(
				"%w: local coverage reaches page %d but the site now has %d pages",
				ErrSiteShrunk, last, site.TotalPages)
		}
		last = site.TotalPages
	}

	gap := site.TotalPages - last
	if gap == 0 {
		return &RangePlan{
			Rationale: fmt.Sprintf("local coverage of %d pages matches the site; nothing new to crawl", last),
		}, nil
	}

	// RangeEnd is the frontier of the current pass over the gap band: the
	// last literal page a completed bounded run reached. Resuming past it is
	// what lets deferred pages actually get scheduled.
	start := local.RangeEnd + 1
	pages := min(gap, policy.PageRangeLimit)
	plan := &RangePlan{
		Range:         model.CrawlRange{StartPage: start, EndPage: start + pages - 1},
		Pages:         pages,
		DeferredPages: gap - pages,
	}
	plan.EstimatedNewItems = estimateItems(plan.Range, site, policy)
	plan.Rationale = fmt.Sprintf(
		"incremental run over the newest %d of %d uncovered pages (yield is an estimate at %d products/page)",
		pages, gap, policy.ProductsPerPageAssumed)
	if plan.DeferredPages > 0 {
		plan.Rationale += fmt.Sprintf("; %d pages deferred to a later run", plan.DeferredPages)
	}
	return plan, nil
}

// estimateItems applies the policy's products-per-page assumption. The site's
// final page is usually partial, so its reported count substitutes for the
// assumption when the range reaches it.
func estimateItems(r model.CrawlRange, site model.SiteProbe, policy model.PlannerPolicy) uint {
	pages := r.Pages()
	if pages == 0 {
		return 0
	}
	if r.EndPage == site.TotalPages {
		return site.ProductsOnLastPage + (pages-1)*policy.ProductsPerPageAssumed
	}
	return pages * policy.ProductsPerPageAssumed
}

// thresholdPages converts the gap detection threshold from products to whole
// pages, rounding up.
func thresholdPages(policy model.PlannerPolicy) uint {
	ppp := policy.ProductsPerPageAssumed
	return (policy.GapDetectionThreshold + ppp - 1) / ppp
}
