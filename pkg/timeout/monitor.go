// Package timeout implements the client-side ride timeout monitor: one timer
// per ride the current user is waiting on. When a ride sits in requested
// status for the full wait window, the user is offered an escalation choice:
// open an external ride-hailing fallback, keep waiting, or cancel.
package timeout

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/famride/famride-backend/internal/models"
)

// DefaultWindow is how long a request waits for an in-group driver before
// the escalation prompt appears.
const DefaultWindow = 5 * time.Minute

// WindowFromEnv reads the wait window from RIDE_TIMEOUT as a Go duration
// string, falling back to DefaultWindow when unset or invalid.
func WindowFromEnv() time.Duration {
	if v := os.Getenv("RIDE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return DefaultWindow
}

// RideSnapshot carries the ride fields the monitor needs to build the
// fallback deep link and decide whose rides to track.
type RideSnapshot struct {
	ID                   uint
	RequesterID          uint
	Status               string
	RequestedAt          time.Time
	PickupAddress        string
	DestinationAddress   string
	PickupLatitude       float64
	PickupLongitude      float64
	DestinationLatitude  float64
	DestinationLongitude float64
}

// StatusFetcher re-reads a ride's current status from the server. The
// monitor polls through this boundary so a push-based subscription can
// replace it later without touching the timer logic.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, rideID uint) (string, error)
}

// Choice is the user's decision at the escalation prompt.
type Choice int

const (
	// ChoiceDismiss closes the prompt without acting.
	ChoiceDismiss Choice = iota
	// ChoiceOpenFallback opens the external ride-hailing deep link.
	ChoiceOpenFallback
	// ChoiceKeepWaiting re-arms the timer for another full window.
	ChoiceKeepWaiting
	// ChoiceCancel cancels the ride request.
	ChoiceCancel
)

// Prompter presents the escalation choices to the user and returns the
// decision.
type Prompter interface {
	PromptTimeout(ride RideSnapshot) Choice
}

// Canceller cancels a ride on the user's behalf.
type Canceller interface {
	CancelRide(ctx context.Context, rideID uint) error
}

type entry struct {
	snapshot  RideSnapshot
	startTime time.Time
	timer     *time.Timer
}

// Monitor tracks one timer per waiting ride, keyed by ride id. Callbacks
// can race against server-driven status changes, which is why the fire path
// re-fetches live status before prompting.
type Monitor struct {
	window    time.Duration
	fetcher   StatusFetcher
	prompter  Prompter
	canceller Canceller
	openLink  func(url string)

	mu     sync.Mutex
	timers map[uint]*entry
	now    func() time.Time
}

// Config wires the monitor's collaborators. Window defaults to
// DefaultWindow; OpenLink may be nil when the host cannot open URLs.
type Config struct {
	Window    time.Duration
	Fetcher   StatusFetcher
	Prompter  Prompter
	Canceller Canceller
	OpenLink  func(url string)
}

func NewMonitor(cfg Config) *Monitor {
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}
	openLink := cfg.OpenLink
	if openLink == nil {
		openLink = func(string) {}
	}
	return &Monitor{
		window:    window,
		fetcher:   cfg.Fetcher,
		prompter:  cfg.Prompter,
		canceller: cfg.Canceller,
		openLink:  openLink,
		timers:    make(map[uint]*entry),
		now:       time.Now,
	}
}

// StartTimeout arms a fresh full-window timer for the ride, replacing any
// existing one.
func (m *Monitor) StartTimeout(rideID uint, snapshot RideSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armLocked(rideID, snapshot, m.window, m.now())
}

// MonitorExisting resumes tracking after a dashboard load. Rides younger
// than the window get a timer for the remaining time, so the total wait
// since the original request never exceeds one window; rides already past
// the window fire on the next tick.
func (m *Monitor) MonitorExisting(rides []RideSnapshot, currentUserID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, ride := range rides {
		if ride.RequesterID != currentUserID || ride.Status != models.RideStatusRequested {
			continue
		}
		if _, tracked := m.timers[ride.ID]; tracked {
			continue
		}

		remaining := m.window - now.Sub(ride.RequestedAt)
		if remaining < 0 {
			remaining = 0
		}
		m.armLocked(ride.ID, ride, remaining, ride.RequestedAt)
	}
}

// OnStatusChanged discards the tracked timer once a ride resolves, so no
// stale prompt appears afterwards.
func (m *Monitor) OnStatusChanged(rideID uint, newStatus string) {
	switch newStatus {
	case models.RideStatusAccepted, models.RideStatusCancelled, models.RideStatusCompleted:
		m.mu.Lock()
		defer m.mu.Unlock()
		m.clearLocked(rideID)
	}
}

// Cleanup cancels every outstanding timer. Called on logout or teardown.
func (m *Monitor) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.timers {
		m.clearLocked(id)
	}
}

// Tracking reports whether the ride currently has a timer.
func (m *Monitor) Tracking(rideID uint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.timers[rideID]
	return ok
}

func (m *Monitor) armLocked(rideID uint, snapshot RideSnapshot, delay time.Duration, startTime time.Time) {
	m.clearLocked(rideID)
	e := &entry{snapshot: snapshot, startTime: startTime}
	e.timer = time.AfterFunc(delay, func() { m.fire(rideID) })
	m.timers[rideID] = e
}

func (m *Monitor) clearLocked(rideID uint) {
	if e, ok := m.timers[rideID]; ok {
		e.timer.Stop()
		delete(m.timers, rideID)
	}
}

// fire handles a timer expiry. The status re-fetch closes the race between
// the local timer and a driver accepting just before it fired: the prompt
// is based on live server state, not the cached snapshot.
func (m *Monitor) fire(rideID uint) {
	m.mu.Lock()
	e, ok := m.timers[rideID]
	m.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, err := m.fetcher.FetchStatus(ctx, rideID)
	if err == nil && status != models.RideStatusRequested {
		// Resolved while the timer was running; drop it quietly.
		m.mu.Lock()
		m.clearLocked(rideID)
		m.mu.Unlock()
		return
	}
	// On fetch error the prompt is still shown, as waiting silently on a
	// dead connection helps nobody.

	switch m.prompter.PromptTimeout(e.snapshot) {
	case ChoiceOpenFallback:
		s := e.snapshot
		m.openLink(UberDeepLink(
			s.PickupAddress, s.DestinationAddress,
			s.PickupLatitude, s.PickupLongitude,
			s.DestinationLatitude, s.DestinationLongitude,
		))
	case ChoiceKeepWaiting:
		// Re-arm for another full window without re-checking the server;
		// only the fire path re-checks.
		m.StartTimeout(rideID, e.snapshot)
	case ChoiceCancel:
		if m.canceller != nil {
			if err := m.canceller.CancelRide(ctx, rideID); err == nil {
				m.mu.Lock()
				m.clearLocked(rideID)
				m.mu.Unlock()
			}
		}
	case ChoiceDismiss:
		// Prompt closed; the expired entry stays until the ride resolves.
	}
}
