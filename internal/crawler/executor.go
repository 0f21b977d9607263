package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/fuzumoe/crawlplan-backend/internal/model"
)

// run is the executor goroutine for one session. It walks the range newest to
// oldest, checkpointing between pages: that is where pause parks it and where
// cancellation is observed, so a stop never interrupts an in-flight fetch.
func (c *controller) run(ctx context.Context, s *session) {
	defer c.wg.Done()

	emptyStreak := uint(0)
	for page := s.rng.StartPage; page <= s.rng.EndPage; page++ {
		if err := c.checkpoint(ctx, s); err != nil {
			return
		}

		res, err := c.fetcher.FetchPage(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if c.recordPage(s, page, 0, err) {
				return
			}
			continue
		}

		// A run of empty pages past the expected boundary means the site's
		// pagination moved under us; stop probing after the configured depth.
		if res.Products == 0 {
			emptyStreak++
			if s.policy.BinarySearchMaxDepth > 0 && emptyStreak > s.policy.BinarySearchMaxDepth {
				c.finish(s, nil, fmt.Sprintf("page boundary moved: %d consecutive empty pages ending at page %d", emptyStreak, page))
				return
			}
		} else {
			emptyStreak = 0
		}

		if c.recordPage(s, page, res.Products, nil) {
			return
		}
	}
	c.finish(s, nil, "")
}

// checkpoint is the safe point between pages: honors cancellation, and when
// the session is paused emits the "paused" stage once and parks until resume.
func (c *controller) checkpoint(ctx context.Context, s *session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.gate.paused() {
		c.mu.Lock()
		c.emitLocked(s, EventProgress, StagePaused, "session paused; no new pages scheduled")
		c.mu.Unlock()
		if err := s.gate.wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// recordPage folds one page outcome into the session, emits progress, and
// reports whether the run just ended (error threshold tripped). Progress
// counts never move backwards, and updates from a session that is no longer
// live are dropped.
func (c *controller) recordPage(s *session, page, products uint, fetchErr error) (ended bool) {
	c.mu.Lock()
	if c.active != s || s.terminal {
		c.mu.Unlock()
		return true
	}
	if s.current < s.total {
		s.current++
	}
	s.newItems += products
	msg := fmt.Sprintf("crawled page %d (%d products)", page, products)
	if fetchErr != nil {
		s.errorCount++
		s.hadError = true
		msg = fmt.Sprintf("page %d failed: %v", page, fetchErr)
	} else if !s.hadError {
		// Coverage only advances over a contiguous prefix of successes;
		// anything past the first failed page has to be re-planned.
		s.coveredThrough = page
	}
	c.emitLocked(s, EventProgress, StageCrawling, msg)

	threshold := s.policy.ErrorThresholdPercent
	tripped := threshold > 0 && s.current > 0 &&
		float64(s.errorCount)/float64(s.current)*100 > threshold
	c.mu.Unlock()

	if tripped {
		c.finish(s, fmt.Errorf("error rate %d/%d exceeded %.1f%% threshold", s.errorCount, s.current, threshold), "")
		return true
	}
	return false
}

// finish ends the session exactly once: Completed on success, Failed when the
// executor gives up. A session retired by Stop is left alone.
func (c *controller) finish(s *session, runErr error, note string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != s || s.terminal {
		return
	}
	s.terminal = true
	now := time.Now().UTC()
	s.endedAt = &now

	if runErr != nil {
		s.state = model.StateFailed
		s.reason = runErr.Error()
		c.emitLocked(s, EventFailed, "", s.reason)
		return
	}
	s.state = model.StateCompleted
	s.reason = note
	msg := fmt.Sprintf("crawled %d pages, %d products", s.current, s.newItems)
	if note != "" {
		msg += "; " + note
	}
	c.emitLocked(s, EventCompleted, "", msg)
}
