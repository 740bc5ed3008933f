package proctor

import (
	"log/slog"
	"sync"
	"time"
)

type ViolationType string

const (
	ViolationTabSwitch      ViolationType = "tab_switch"
	ViolationFullscreenExit ViolationType = "fullscreen_exit"
)

// Violation is one detected tamper signal. The session keeps an append-only
// list of them for its lifetime.
type Violation struct {
	Type ViolationType `json:"type"`
	At   time.Time     `json:"at"`
}

// Display abstracts the host's fullscreen control surface.
type Display interface {
	EnterFullscreen() error
	ExitFullscreen() error
	Fullscreen() bool
}

// MonitorConfig configures violation detection.
type MonitorConfig struct {
	EnforceFullscreen bool
	// MaxViolations is the combined tab-switch + fullscreen-exit ceiling.
	MaxViolations int
	// ReentryDelay is waited before re-entering fullscreen after an exit,
	// so the monitor does not fight the host's own transition.
	ReentryDelay time.Duration

	OnViolation            func(ViolationType)
	OnMaxViolationsReached func()
}

func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		EnforceFullscreen: true,
		MaxViolations:     10,
		ReentryDelay:      500 * time.Millisecond,
	}
}

// Monitor counts tab switches and fullscreen exits fed to it by the host's
// visibility and fullscreen events. Counters are monotonically
// non-decreasing; the max-violations callback latches and fires exactly
// once per session.
type Monitor struct {
	cfg     MonitorConfig
	display Display
	logger  *slog.Logger

	mu              sync.Mutex
	active          bool
	wasFullscreen   bool
	tabSwitches     int
	fullscreenExits int
	maxFired        bool
	violations      []Violation
}

func NewMonitor(display Display, logger *slog.Logger, cfg MonitorConfig) *Monitor {
	if cfg.ReentryDelay <= 0 {
		cfg.ReentryDelay = DefaultMonitorConfig().ReentryDelay
	}
	return &Monitor{
		cfg:     cfg,
		display: display,
		logger:  logger,
	}
}

// Start activates the monitor and, when enforcement is configured, puts the
// host into fullscreen.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		return
	}
	m.active = true

	if m.cfg.EnforceFullscreen {
		if err := m.display.EnterFullscreen(); err != nil {
			m.logger.Warn("fullscreen request failed", "error", err)
		} else {
			m.wasFullscreen = true
		}
	}
}

// Stop deactivates the monitor and exits fullscreen. Late host events
// arriving after Stop fire no callbacks and mutate no counters.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	inFullscreen := m.display.Fullscreen()
	m.mu.Unlock()

	if inFullscreen {
		if err := m.display.ExitFullscreen(); err != nil {
			m.logger.Warn("fullscreen exit failed", "error", err)
		}
	}
}

// HandleVisibilityChange is the host's page-visibility event. A transition
// to hidden while active counts as a tab switch.
func (m *Monitor) HandleVisibilityChange(hidden bool) {
	if !hidden {
		return
	}

	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.tabSwitches++
	m.violations = append(m.violations, Violation{Type: ViolationTabSwitch, At: time.Now()})
	fireMax := m.crossedCeilingLocked()
	m.mu.Unlock()

	m.logger.Warn("violation detected", "type", ViolationTabSwitch)
	if m.cfg.OnViolation != nil {
		m.cfg.OnViolation(ViolationTabSwitch)
	}
	if fireMax && m.cfg.OnMaxViolationsReached != nil {
		m.cfg.OnMaxViolationsReached()
	}
}

// HandleFullscreenChange is the host's fullscreen event. A true→false
// transition while active counts as a fullscreen exit; with enforcement on,
// re-entry is scheduled after the configured delay.
func (m *Monitor) HandleFullscreenChange(fullscreen bool) {
	m.mu.Lock()
	if !m.active {
		m.wasFullscreen = fullscreen
		m.mu.Unlock()
		return
	}

	exited := !fullscreen && m.wasFullscreen
	m.wasFullscreen = fullscreen
	if !exited {
		m.mu.Unlock()
		return
	}

	m.fullscreenExits++
	m.violations = append(m.violations, Violation{Type: ViolationFullscreenExit, At: time.Now()})
	fireMax := m.crossedCeilingLocked()
	m.mu.Unlock()

	m.logger.Warn("violation detected", "type", ViolationFullscreenExit)
	if m.cfg.OnViolation != nil {
		m.cfg.OnViolation(ViolationFullscreenExit)
	}
	if fireMax && m.cfg.OnMaxViolationsReached != nil {
		m.cfg.OnMaxViolationsReached()
	}

	if m.cfg.EnforceFullscreen {
		time.AfterFunc(m.cfg.ReentryDelay, m.reenterFullscreen)
	}
}

func (m *Monitor) reenterFullscreen() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if err := m.display.EnterFullscreen(); err != nil {
		m.logger.Warn("fullscreen re-entry failed", "error", err)
		return
	}

	m.mu.Lock()
	m.wasFullscreen = true
	m.mu.Unlock()
}

// crossedCeilingLocked latches the max-violations signal: true exactly once,
// when the combined counter first reaches the ceiling.
func (m *Monitor) crossedCeilingLocked() bool {
	if m.maxFired || m.cfg.MaxViolations <= 0 {
		return false
	}
	if m.tabSwitches+m.fullscreenExits >= m.cfg.MaxViolations {
		m.maxFired = true
		return true
	}
	return false
}

// Counts returns the current violation counters.
func (m *Monitor) Counts() (tabSwitches, fullscreenExits int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tabSwitches, m.fullscreenExits
}

// Violations returns a copy of the append-only violation log.
func (m *Monitor) Violations() []Violation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Violation, len(m.violations))
	copy(out, m.violations)
	return out
}
