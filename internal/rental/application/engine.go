package application

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	masterdata "carsplay/internal/masterdata/domain"
	"carsplay/internal/observability/metrics"
	"carsplay/internal/rental/application/events"
	rental "carsplay/internal/rental/domain"
)

// ErrUnknownTier is returned when a requested duration has no rate tier.
var ErrUnknownTier = errors.New("rental: unknown duration tier")

// ErrUnknownStation is returned when an operation targets a station the
// directory does not know.
var ErrUnknownStation = errors.New("rental: unknown station")

// RateProvider supplies the selectable duration tiers.
type RateProvider interface {
	Tiers(ctx context.Context) ([]masterdata.RateTier, error)
}

// StationDirectory answers whether a station id exists.
type StationDirectory interface {
	Exists(ctx context.Context, stationID string) (bool, error)
}

// SnapshotStore persists the per-station timer snapshots. One document,
// read once at startup and rewritten after every mutation.
type SnapshotStore interface {
	Load() (map[string]rental.Snapshot, error)
	Save(map[string]rental.Snapshot) error
}

// EventPublisher publishes session lifecycle events.
type EventPublisher interface {
	PublishSessionCompleted(ctx context.Context, event events.SessionCompleted) error
	PublishSessionSettled(ctx context.Context, event events.SessionSettled) error
}

// Engine owns the timer state of every station and drives the countdowns.
// All mutations run under one lock, so cross-station reads such as the
// aggregate total never observe a torn transfer.
type Engine struct {
	clock     rental.Clock
	scheduler TickScheduler
	store     SnapshotStore
	rates     RateProvider
	stations  StationDirectory
	publisher EventPublisher
	logger    *log.Logger
	cfg       Config
	newID     func() string

	mu     sync.Mutex
	timers map[string]*rental.TimerState
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithIDFactory overrides session id generation.
func WithIDFactory(factory func() string) EngineOption {
	return func(e *Engine) {
		if factory != nil {
			e.newID = factory
		}
	}
}

// WithStationDirectory enables existence checks on transfer destinations.
func WithStationDirectory(directory StationDirectory) EngineOption {
	return func(e *Engine) { e.stations = directory }
}

// NewEngine constructs the engine.
func NewEngine(clock rental.Clock, scheduler TickScheduler, store SnapshotStore, rates RateProvider, publisher EventPublisher, cfg Config, logger *log.Logger, opts ...EngineOption) (*Engine, error) {
	if clock == nil {
		return nil, errors.New("rental engine: nil clock")
	}
	if scheduler == nil {
		return nil, errors.New("rental engine: nil scheduler")
	}
	if store == nil {
		return nil, errors.New("rental engine: nil snapshot store")
	}
	if publisher == nil {
		return nil, errors.New("rental engine: nil publisher")
	}
	engine := &Engine{
		clock:     clock,
		scheduler: scheduler,
		store:     store,
		rates:     rates,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		newID:     uuid.NewString,
		timers:    make(map[string]*rental.TimerState),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// Init loads the persisted snapshot and reconstructs timer state. Stations
// that were running re-arm their tick; sessions whose target passed while
// the process was down complete immediately.
func (e *Engine) Init(ctx context.Context) error {
	snapshots, err := e.store.Load()
	if err != nil {
		// Malformed snapshots are recovered by starting empty; no session
		// data is fabricated.
		if e.logger != nil {
			e.logger.Printf("rental engine: snapshot load failed, starting empty: %v", err)
		}
		snapshots = nil
	}

	now := e.clock.Now()
	var completed []events.SessionCompleted

	e.mu.Lock()
	for stationID, snapshot := range snapshots {
		if stationID == "" {
			continue
		}
		state := rental.RestoreTimerState(stationID, snapshot, now)
		e.timers[stationID] = state
		if session, ok := state.CompleteIfDue(now); ok {
			completed = append(completed, completedEvent(stationID, session, now))
			continue
		}
		if state.Running() {
			e.armTickLocked(stationID)
		}
	}
	e.persistLocked()
	e.updateGaugesLocked()
	e.mu.Unlock()

	for _, event := range completed {
		e.publishCompleted(ctx, event)
	}
	return nil
}

// Close stops all tick goroutines.
func (e *Engine) Close() {
	e.scheduler.Stop()
}

// Start begins or resumes the countdown for a station.
func (e *Engine) Start(ctx context.Context, stationID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.timerLocked(ctx, stationID)
	if err != nil {
		return err
	}
	if err := state.Start(e.newID(), e.clock.Now()); err != nil {
		return err
	}
	e.armTickLocked(stationID)
	e.persistLocked()
	metrics.SessionRunning(stationID, true)
	e.updateGaugesLocked()
	return nil
}

// Pause stops the countdown, banking the elapsed segment. A pause that
// lands exactly on or past the target duration completes the session
// instead.
func (e *Engine) Pause(ctx context.Context, stationID string) error {
	now := e.clock.Now()

	e.mu.Lock()
	state, err := e.timerLocked(ctx, stationID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if session, ok := state.CompleteIfDue(now); ok {
		e.scheduler.Cancel(stationID)
		e.persistLocked()
		e.updateGaugesLocked()
		event := completedEvent(stationID, session, now)
		e.mu.Unlock()
		e.publishCompleted(ctx, event)
		return nil
	}
	err = state.Pause(now)
	if err == nil {
		e.scheduler.Cancel(stationID)
		e.persistLocked()
		metrics.SessionRunning(stationID, false)
		e.updateGaugesLocked()
	}
	e.mu.Unlock()
	return err
}

// StopEarly ends the active session now, charging the full planned amount.
func (e *Engine) StopEarly(ctx context.Context, stationID, operator string) error {
	now := e.clock.Now()

	e.mu.Lock()
	state, err := e.timerLocked(ctx, stationID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	session, err := state.StopEarly(now)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.scheduler.Cancel(stationID)
	e.persistLocked()
	metrics.SessionRunning(stationID, false)
	metrics.SessionSettled()
	e.updateGaugesLocked()
	event := settledEvent(stationID, operator, session)
	e.mu.Unlock()

	e.publishSettled(ctx, event)
	return nil
}

// Finalize confirms a completed session, committing its amount to the
// running total and silencing the alarm.
func (e *Engine) Finalize(ctx context.Context, stationID, operator string) error {
	e.mu.Lock()
	state, err := e.timerLocked(ctx, stationID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	session, err := state.Finalize()
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.persistLocked()
	metrics.SessionSettled()
	e.updateGaugesLocked()
	event := settledEvent(stationID, operator, session)
	e.mu.Unlock()

	e.publishSettled(ctx, event)
	return nil
}

// Reset clears leftover counters on an idle station.
func (e *Engine) Reset(ctx context.Context, stationID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.timerLocked(ctx, stationID)
	if err != nil {
		return err
	}
	if err := state.Reset(); err != nil {
		return err
	}
	e.scheduler.Cancel(stationID)
	e.persistLocked()
	return nil
}

// ChangeDuration updates the duration tier template for the next session on
// an idle station. The requested minutes must match a known rate tier.
func (e *Engine) ChangeDuration(ctx context.Context, stationID string, minutes int) error {
	amount, err := e.tierAmount(ctx, minutes)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.timerLocked(ctx, stationID)
	if err != nil {
		return err
	}
	if err := state.SelectDuration(minutes, amount); err != nil {
		return err
	}
	e.persistLocked()
	return nil
}

// Transfer moves a station's sessions and live countdown to another station.
// An occupied destination requires confirm; a declined transfer leaves both
// stations untouched.
func (e *Engine) Transfer(ctx context.Context, sourceID, destinationID string, confirm bool) error {
	if sourceID == destinationID {
		return rental.ErrSameStation
	}
	if e.stations != nil {
		exists, err := e.stations.Exists(ctx, destinationID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUnknownStation
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	source, err := e.timerLocked(ctx, sourceID)
	if err != nil {
		return err
	}
	destination, err := e.timerLocked(ctx, destinationID)
	if err != nil {
		return err
	}
	if err := source.TransferTo(destination, confirm); err != nil {
		return err
	}

	e.scheduler.Cancel(sourceID)
	if destination.Running() {
		e.armTickLocked(destinationID)
	} else {
		e.scheduler.Cancel(destinationID)
	}
	e.applyDefaultTemplateLocked(ctx, source)
	e.persistLocked()
	metrics.SessionRunning(sourceID, false)
	metrics.SessionRunning(destinationID, destination.Running())
	e.updateGaugesLocked()
	return nil
}

// Elapsed returns the live elapsed seconds for a station.
func (e *Engine) Elapsed(ctx context.Context, stationID string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.timerLocked(ctx, stationID)
	if err != nil {
		return 0, err
	}
	return state.Elapsed(e.clock.Now()), nil
}

// AggregateTotal sums the settled session amounts across all stations.
func (e *Engine) AggregateTotal() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aggregateLocked()
}

// StationView is a read model of one station's timer.
type StationView struct {
	StationID        string
	Status           rental.Status
	Running          bool
	ElapsedSeconds   int
	RemainingSeconds int
	Percent          int
	TotalSeconds     int
	SelectedMinutes  int
	PlannedAmount    float64
	SettledTotal     float64
	Sessions         []rental.ClosedSession
	Active           *rental.ActiveSession
}

// StateOf returns the read model for one station, creating it lazily the
// first time the station is rendered.
func (e *Engine) StateOf(ctx context.Context, stationID string) (StationView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.timerLocked(ctx, stationID)
	if err != nil {
		return StationView{}, err
	}
	return e.viewLocked(state), nil
}

// States returns all station views, sorted by station id, plus the
// aggregate settled total.
func (e *Engine) States() ([]StationView, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	views := make([]StationView, 0, len(e.timers))
	for _, state := range e.timers {
		views = append(views, e.viewLocked(state))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].StationID < views[j].StationID })
	return views, e.aggregateLocked()
}

func (e *Engine) viewLocked(state *rental.TimerState) StationView {
	now := e.clock.Now()
	return StationView{
		StationID:        state.StationID(),
		Status:           state.Status(),
		Running:          state.Running(),
		ElapsedSeconds:   state.Elapsed(now),
		RemainingSeconds: state.Remaining(now),
		Percent:          state.Percent(now),
		TotalSeconds:     state.TotalSeconds(),
		SelectedMinutes:  state.SelectedMinutes(),
		PlannedAmount:    state.PlannedAmount(),
		SettledTotal:     state.SettledTotal(),
		Sessions:         state.Sessions(),
		Active:           state.Active(),
	}
}

func (e *Engine) aggregateLocked() float64 {
	var total float64
	for _, state := range e.timers {
		total += state.SettledTotal()
	}
	return total
}

// timerLocked returns the timer for a station, creating it lazily with the
// default duration template applied.
func (e *Engine) timerLocked(ctx context.Context, stationID string) (*rental.TimerState, error) {
	if stationID == "" {
		return nil, ErrUnknownStation
	}
	if state, ok := e.timers[stationID]; ok {
		return state, nil
	}
	state := rental.NewTimerState(stationID)
	e.applyDefaultTemplateLocked(ctx, state)
	e.timers[stationID] = state
	return state, nil
}

func (e *Engine) applyDefaultTemplateLocked(ctx context.Context, state *rental.TimerState) {
	minutes := e.cfg.DefaultMinutes
	if minutes <= 0 {
		minutes = 30
	}
	amount, err := e.tierAmount(ctx, minutes)
	if err != nil {
		amount = 0
	}
	if err := state.SelectDuration(minutes, amount); err != nil && e.logger != nil {
		e.logger.Printf("rental engine: default tier not applied for %s: %v", state.StationID(), err)
	}
}

// tierAmount resolves the billing amount for a duration. When the rate
// table is unreachable the static fallback tiers keep the desk operable.
func (e *Engine) tierAmount(ctx context.Context, minutes int) (float64, error) {
	if minutes <= 0 {
		return 0, rental.ErrNoDuration
	}
	if e.rates != nil {
		tiers, err := e.rates.Tiers(ctx)
		if err == nil && len(tiers) > 0 {
			for _, tier := range tiers {
				if tier.Minutes == minutes {
					return tier.Amount, nil
				}
			}
			return 0, ErrUnknownTier
		}
		if err != nil && e.logger != nil {
			e.logger.Printf("rental engine: rate tiers unavailable, using fallback: %v", err)
		}
	}
	for _, tier := range e.cfg.FallbackTiers {
		if tier.Minutes == minutes {
			return tier.Amount, nil
		}
	}
	return 0, ErrUnknownTier
}

// armTickLocked registers the 1 Hz countdown tick for a station.
func (e *Engine) armTickLocked(stationID string) {
	e.scheduler.Register(stationID, func(now time.Time) {
		e.tick(stationID, now)
	})
}

// tick runs once per second while a station counts down. A tick that fires
// against a station that already stopped is a no-op.
func (e *Engine) tick(stationID string, now time.Time) {
	e.mu.Lock()
	state, ok := e.timers[stationID]
	if !ok {
		e.mu.Unlock()
		return
	}
	session, completed := state.CompleteIfDue(now)
	if !completed {
		e.mu.Unlock()
		return
	}
	e.scheduler.Cancel(stationID)
	e.persistLocked()
	metrics.SessionRunning(stationID, false)
	e.updateGaugesLocked()
	event := completedEvent(stationID, session, now)
	e.mu.Unlock()

	e.publishCompleted(context.Background(), event)
}

// persistLocked writes the snapshot after a mutation. Last writer wins;
// the engine is the only writer.
func (e *Engine) persistLocked() {
	snapshots := make(map[string]rental.Snapshot, len(e.timers))
	for stationID, state := range e.timers {
		snapshots[stationID] = state.Snapshot()
	}
	if err := e.store.Save(snapshots); err != nil && e.logger != nil {
		e.logger.Printf("rental engine: snapshot save failed: %v", err)
	}
}

func (e *Engine) updateGaugesLocked() {
	running := 0
	for _, state := range e.timers {
		if state.Running() {
			running++
		}
	}
	metrics.ActiveTimers(running)
	metrics.SettledRevenue(e.aggregateLocked())
}

func (e *Engine) publishCompleted(ctx context.Context, event events.SessionCompleted) {
	metrics.SessionCompleted()
	if err := e.publisher.PublishSessionCompleted(ctx, event); err != nil && e.logger != nil {
		e.logger.Printf("rental engine: completed event publish failed: station=%s err=%v", event.StationID, err)
	}
}

func (e *Engine) publishSettled(ctx context.Context, event events.SessionSettled) {
	if err := e.publisher.PublishSessionSettled(ctx, event); err != nil && e.logger != nil {
		e.logger.Printf("rental engine: settled event publish failed: station=%s err=%v", event.StationID, err)
	}
}

func completedEvent(stationID string, session *rental.ClosedSession, at time.Time) events.SessionCompleted {
	return events.SessionCompleted{
		StationID: stationID,
		SessionID: session.ID,
		Minutes:   session.Minutes,
		Amount:    session.Amount,
		At:        at,
	}
}

func settledEvent(stationID, operator string, session *rental.ClosedSession) events.SessionSettled {
	return events.SessionSettled{
		StationID:       stationID,
		SessionID:       session.ID,
		Operator:        operator,
		Start:           session.Start,
		End:             session.End,
		Minutes:         session.Minutes,
		DurationSeconds: session.DurationSeconds,
		Amount:          session.Amount,
	}
}
