package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fuzumoe/crawlplan-backend/internal/crawler"
	"github.com/fuzumoe/crawlplan-backend/internal/metrics"
	"github.com/fuzumoe/crawlplan-backend/internal/model"
	"github.com/fuzumoe/crawlplan-backend/internal/planner"
	"github.com/fuzumoe/crawlplan-backend/internal/probe"
	"github.com/fuzumoe/crawlplan-backend/internal/repository"
)

// ErrNothingToCrawl is returned by Start when planning finds zero new pages.
var ErrNothingToCrawl = errors.New("local store is already up to date")

// SessionService manages crawl session lifecycle: it drives the controller,
// archives sessions in the database, advances local coverage on completion,
// and fans events out to subscribers.
type SessionService interface {
	Start(ctx context.Context, in model.StartSessionInput) (string, error)
	Pause(id string) error
	Resume(id string) error
	Stop(id string) error
	Get(id string) (*model.CrawlSessionDTO, error)
	List(p repository.Pagination) ([]model.CrawlSessionDTO, error)
	// Subscribe returns a live event channel and a cancel func. Slow
	// subscribers miss events rather than blocking the pump.
	Subscribe() (<-chan crawler.Event, func())
}

type sessionService struct {
	ctrl     crawler.Controller
	sessions repository.SessionRepository
	states   repository.CrawlStateRepository
	prober   probe.SiteProber
	policy   model.PlannerPolicy
	metrics  *metrics.Metrics
	log      *slog.Logger

	subMu sync.Mutex
	subs  map[chan crawler.Event]struct{}
}

// NewSessionService constructs a SessionService and starts the event pump.
// The pump exits when the controller's event channel closes (Shutdown).
func NewSessionService(
	ctrl crawler.Controller,
	sessions repository.SessionRepository,
	states repository.CrawlStateRepository,
	prober probe.SiteProber,
	policy model.PlannerPolicy,
	m *metrics.Metrics,
	log *slog.Logger,
) SessionService {
	if log == nil {
		log = slog.Default()
	}
	s := &sessionService{
		ctrl:     ctrl,
		sessions: sessions,
		states:   states,
		prober:   prober,
		policy:   policy,
		metrics:  m,
		log:      log,
		subs:     make(map[chan crawler.Event]struct{}),
	}
	go s.pump()
	return s
}

func (s *sessionService) Start(ctx context.Context, in model.StartSessionInput) (string, error) {
	policy := s.policy.Apply(in.Policy)
	if err := policy.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", planner.ErrInvalidPolicy, err)
	}

	var (
		rng model.CrawlRange
		// Only a planned run that reaches the end of the coverage gap may
		// reset the coverage frontier on completion. Explicit ranges never
		// do; their relation to the gap is unknown.
		closesGap bool
	)
	if in.Range != nil {
		rng = *in.Range
		if rng.IsZero() {
			return "", fmt.Errorf("%w: explicit range is empty", planner.ErrInvalidPolicy)
		}
		if err := rng.Validate(0); err != nil {
			return "", fmt.Errorf("%w: %v", planner.ErrInvalidPolicy, err)
		}
	} else {
		plan, err := s.planRange(ctx, policy)
		if err != nil {
			return "", err
		}
		if plan.Pages == 0 {
			return "", ErrNothingToCrawl
		}
		rng = plan.Range
		closesGap = plan.DeferredPages == 0
	}

	id, err := s.ctrl.Start(rng, policy)
	if err != nil {
		return "", err
	}

	row := &model.CrawlSession{
		ID:         id,
		State:      model.StateRunning,
		Mode:       policy.CrawlingMode,
		RangeStart: rng.StartPage,
		RangeEnd:   rng.EndPage,
		Total:      rng.Pages(),
		ClosesGap:  closesGap,
		StartedAt:  time.Now().UTC(),
	}
	if err := s.sessions.Create(row); err != nil {
		// The run must not outlive its archive row.
		if stopErr := s.ctrl.Stop(id); stopErr != nil {
			s.log.Error("failed to stop unarchived session", "session_id", id, "error", stopErr)
		}
		return "", fmt.Errorf("archive session: %w", err)
	}
	s.metrics.IncSession(model.StateRunning)
	return id, nil
}

// planRange computes the "smart" range for a start request without an
// explicit one: live probe plus persisted coverage through the planner.
func (s *sessionService) planRange(ctx context.Context, policy model.PlannerPolicy) (*planner.RangePlan, error) {
	site, err := s.prober.Probe(ctx)
	if err != nil {
		return nil, fmt.Errorf("probe before session start: %w", err)
	}
	state, err := s.states.Get()
	if err != nil {
		return nil, fmt.Errorf("read local crawl state: %w", err)
	}
	return planner.Plan(site, state.ToSummary(), policy)
}

func (s *sessionService) Pause(id string) error {
	if err := s.ctrl.Pause(id); err != nil {
		return err
	}
	if err := s.sessions.UpdateState(id, model.StatePaused); err != nil {
		s.log.Error("failed to archive pause", "session_id", id, "error", err)
	}
	return nil
}

func (s *sessionService) Resume(id string) error {
	if err := s.ctrl.Resume(id); err != nil {
		return err
	}
	if err := s.sessions.UpdateState(id, model.StateRunning); err != nil {
		s.log.Error("failed to archive resume", "session_id", id, "error", err)
	}
	return nil
}

func (s *sessionService) Stop(id string) error {
	if err := s.ctrl.Stop(id); err != nil {
		return err
	}
	if err := s.sessions.Finish(id, model.StateIdle, "stopped by operator", time.Now().UTC()); err != nil {
		s.log.Error("failed to archive stop", "session_id", id, "error", err)
	}
	s.metrics.IncSession(model.StateIdle)
	if s.metrics != nil {
		s.metrics.SessionProgress.Set(0)
	}
	return nil
}

func (s *sessionService) Get(id string) (*model.CrawlSessionDTO, error) {
	if dto, ok := s.ctrl.Get(id); ok {
		return dto, nil
	}
	row, err := s.sessions.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", crawler.ErrSessionNotFound, id)
	}
	return row.ToDTO(), nil
}

func (s *sessionService) List(p repository.Pagination) ([]model.CrawlSessionDTO, error) {
	rows, err := s.sessions.List(p)
	if err != nil {
		return nil, err
	}
	dtos := make([]model.CrawlSessionDTO, len(rows))
	for i := range rows {
		dtos[i] = *rows[i].ToDTO()
	}
	return dtos, nil
}

func (s *sessionService) Subscribe() (<-chan crawler.Event, func()) {
	ch := make(chan crawler.Event, 16)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// pump is the single consumer of the controller's event stream. It archives
// progress and terminal outcomes, advances coverage on completion, and fans
// events out to subscribers.
func (s *sessionService) pump() {
	for ev := range s.ctrl.Events() {
		s.persist(ev)
		s.broadcast(ev)
	}
}

func (s *sessionService) persist(ev crawler.Event) {
	switch ev.Kind {
	case crawler.EventProgress:
		if err := s.sessions.UpdateProgress(ev.SessionID, ev.Current, ev.Total, ev.NewItems, ev.ErrorCount); err != nil {
			s.log.Error("failed to archive progress", "session_id", ev.SessionID, "error", err)
		}
		if s.metrics != nil {
			s.metrics.SessionProgress.Set(ev.ProgressPercentage)
			if ev.Stage == crawler.StageCrawling {
				s.metrics.PagesCrawled.Inc()
			}
		}
	case crawler.EventCompleted:
		if err := s.sessions.Finish(ev.SessionID, model.StateCompleted, ev.CurrentMessage, time.Now().UTC()); err != nil {
			s.log.Error("failed to archive completion", "session_id", ev.SessionID, "error", err)
		}
		if err := s.sessions.UpdateProgress(ev.SessionID, ev.Current, ev.Total, ev.NewItems, ev.ErrorCount); err != nil {
			s.log.Error("failed to archive final progress", "session_id", ev.SessionID, "error", err)
		}
		closesGap := false
		if row, err := s.sessions.FindByID(ev.SessionID); err != nil {
			s.log.Error("failed to load session for coverage advance", "session_id", ev.SessionID, "error", err)
		} else {
			closesGap = row.ClosesGap
		}
		if err := s.states.AdvanceCoverage(ev.CoveredThrough, ev.NewItems, closesGap); err != nil {
			s.log.Error("failed to advance local coverage", "session_id", ev.SessionID, "error", err)
		}
		s.metrics.IncSession(model.StateCompleted)
		if s.metrics != nil {
			s.metrics.SessionProgress.Set(0)
		}
	case crawler.EventFailed:
		if err := s.sessions.Finish(ev.SessionID, model.StateFailed, ev.CurrentMessage, time.Now().UTC()); err != nil {
			s.log.Error("failed to archive failure", "session_id", ev.SessionID, "error", err)
		}
		s.metrics.IncSession(model.StateFailed)
		if s.metrics != nil {
			s.metrics.SessionProgress.Set(0)
		}
	}
}

func (s *sessionService) broadcast(ev crawler.Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
