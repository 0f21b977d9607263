package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fuzumoe/crawlplan-backend/internal/model"
)

// Session control failures, returned synchronously to the caller.
var (
	ErrAlreadyRunning    = errors.New("a crawl session is already running")
	ErrInvalidTransition = errors.New("illegal session state transition")
	ErrSessionNotFound   = errors.New("no such crawl session")
)

// Controller owns the single live crawl session and serializes every state
// transition. It is injected into the session service so handlers can control
// runs.
type Controller interface {
	// Start allocates a fresh session over the given range and launches the
	// executor. Legal only when no session is live (Idle or a terminal one).
	Start(rng model.CrawlRange, policy model.PlannerPolicy) (string, error)
	Pause(id string) error
	Resume(id string) error
	// Stop cancels the executor cooperatively and retires the session. Legal
	// from Running and Paused.
	Stop(id string) error
	// Get returns the live session snapshot, or false if id is not live.
	Get(id string) (*model.CrawlSessionDTO, bool)
	// Active returns the live session snapshot, nil when idle.
	Active() *model.CrawlSessionDTO
	// Events exposes the outbound event stream. Single consumer.
	Events() <-chan Event
	Shutdown()
}

// New creates a controller around the given fetcher. buf sizes the event
// channel; events are dropped (with a log line) rather than blocking the
// executor when the consumer falls behind.
func New(fetcher PageFetcher, log *slog.Logger, buf int) Controller {
	if buf <= 0 {
		buf = 128
	}
	if log == nil {
		log = slog.Default()
	}
	return &controller{
		fetcher: fetcher,
		log:     log,
		events:  make(chan Event, buf),
	}
}

type controller struct {
	fetcher PageFetcher
	log     *slog.Logger
	events  chan Event

	mu     sync.Mutex
	active *session
	closed bool
	wg     sync.WaitGroup
}

// session is the controller's live record of one run. All fields are guarded
// by controller.mu except the gate and cancel, which are safe on their own.
type session struct {
	id         string
	state      string
	mode       string
	rng        model.CrawlRange
	policy     model.PlannerPolicy
	current    uint
	total      uint
	newItems   uint
	errorCount uint
	// coveredThrough is the highest page fetched before the first failure of
	// the run; hadError freezes it so a failed page never counts as covered.
	coveredThrough uint
	hadError       bool
	reason         string
	startedAt      time.Time
	endedAt        *time.Time
	terminal       bool

	cancel context.CancelFunc
	gate   *gate
}

func (c *controller) Start(rng model.CrawlRange, policy model.PlannerPolicy) (string, error) {
	if rng.IsZero() {
		return "", fmt.Errorf("%w: empty range", ErrInvalidTransition)
	}
	if err := rng.Validate(0); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", errors.New("controller is shut down")
	}
	if c.active != nil && !model.IsTerminalState(c.active.state) {
		return "", ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:        uuid.NewString(),
		state:     model.StateRunning,
		mode:      policy.CrawlingMode,
		rng:       rng,
		policy:    policy,
		total:     rng.Pages(),
		startedAt: time.Now().UTC(),
		cancel:    cancel,
		gate:      newGate(),
	}
	c.active = s
	c.wg.Add(1)
	go c.run(ctx, s)

	c.emitLocked(s, EventProgress, StageStarting,
		fmt.Sprintf("session started over pages %d-%d", rng.StartPage, rng.EndPage))
	return s.id, nil
}

func (c *controller) Pause(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.liveLocked(id)
	if err != nil {
		return err
	}
	if !model.CanTransition(s.state, model.StatePaused) {
		return fmt.Errorf("%w: cannot pause a %s session", ErrInvalidTransition, s.state)
	}
	s.state = model.StatePaused
	s.gate.pause()
	// In-flight work drains at the next checkpoint; the event stream reports
	// stage "paused" once the executor actually parks.
	c.emitLocked(s, EventProgress, StagePausing, "pause requested; finishing in-flight page")
	return nil
}

func (c *controller) Resume(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.liveLocked(id)
	if err != nil {
		return err
	}
	if !model.CanTransition(s.state, model.StateRunning) {
		return fmt.Errorf("%w: cannot resume a %s session", ErrInvalidTransition, s.state)
	}
	s.state = model.StateRunning
	s.gate.resume()
	c.emitLocked(s, EventProgress, StageResumed, "session resumed")
	return nil
}

func (c *controller) Stop(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.liveLocked(id)
	if err != nil {
		return err
	}
	if !model.CanTransition(s.state, model.StateIdle) {
		return fmt.Errorf("%w: cannot stop a %s session", ErrInvalidTransition, s.state)
	}
	c.emitLocked(s, EventProgress, StageStopping, "stop requested; cancelling at next checkpoint")
	now := time.Now().UTC()
	s.state = model.StateIdle
	s.reason = "stopped by operator"
	s.endedAt = &now
	s.terminal = true
	s.cancel()
	s.gate.resume() // wake a parked executor so it can observe cancellation
	c.active = nil  // later events from this session are stale and dropped
	return nil
}

func (c *controller) Get(id string) (*model.CrawlSessionDTO, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || c.active.id != id {
		return nil, false
	}
	return c.active.dto(), true
}

func (c *controller) Active() *model.CrawlSessionDTO {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	return c.active.dto()
}

func (c *controller) Events() <-chan Event { return c.events }

// Shutdown cancels any live session, waits for the executor, and closes the
// event stream.
func (c *controller) Shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.active != nil {
		c.active.cancel()
		c.active.gate.resume()
		c.active = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
	close(c.events)
}

// liveLocked resolves id against the live session. Callers hold c.mu.
func (c *controller) liveLocked(id string) (*session, error) {
	if c.closed || c.active == nil {
		// Idle: only start is legal.
		return nil, fmt.Errorf("%w: no active session", ErrInvalidTransition)
	}
	if c.active.id != id {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if c.active.terminal {
		return nil, fmt.Errorf("%w: session %s already ended", ErrInvalidTransition, id)
	}
	return c.active, nil
}

// emitLocked posts an event for s without blocking the caller. Callers hold
// c.mu. Events from a retired session are dropped here, which is what keeps
// stale-session races harmless for consumers.
func (c *controller) emitLocked(s *session, kind EventKind, stage Stage, msg string) {
	if c.closed || c.active != s {
		return
	}
	ev := Event{
		Kind:           kind,
		SessionID:      s.id,
		Stage:          stage,
		Current:        s.current,
		Total:          s.total,
		NewItems:       s.newItems,
		ErrorCount:     s.errorCount,
		CoveredThrough: s.coveredThrough,
		CurrentMessage: msg,
	}
	if s.total > 0 {
		ev.ProgressPercentage = float64(s.current) / float64(s.total) * 100
	}
	select {
	case c.events <- ev:
	default:
		c.log.Warn("event channel full, dropping event", "session_id", s.id, "kind", string(kind))
	}
}

func (s *session) dto() *model.CrawlSessionDTO {
	return &model.CrawlSessionDTO{
		ID:         s.id,
		State:      s.state,
		Mode:       s.mode,
		Range:      s.rng,
		Current:    s.current,
		Total:      s.total,
		NewItems:   s.newItems,
		ErrorCount: s.errorCount,
		Reason:     s.reason,
		StartedAt:  s.startedAt,
		EndedAt:    s.endedAt,
	}
}

// gate blocks the executor between pages while the session is paused. The
// open channel is closed whenever the gate is open; pausing swaps in a fresh
// unclosed channel.
type gate struct {
	mu   sync.Mutex
	open chan struct{}
}

func newGate() *gate {
	g := &gate{open: make(chan struct{})}
	close(g.open)
	return g
}

func (g *gate) pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
		g.open = make(chan struct{})
	default:
	}
}

func (g *gate) resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
	default:
		close(g.open)
	}
}

// paused reports whether the gate is currently shut.
func (g *gate) paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
		return false
	default:
		return true
	}
}

// wait parks until the gate opens or ctx is cancelled.
func (g *gate) wait(ctx context.Context) error {
	g.mu.Lock()
	ch := g.open
	g.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
