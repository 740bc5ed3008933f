package proctor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDisplay records fullscreen transitions.
type fakeDisplay struct {
	mu         sync.Mutex
	fullscreen bool
	enters     int
	exits      int
	enterErr   error
}

func (d *fakeDisplay) EnterFullscreen() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.enterErr != nil {
		return d.enterErr
	}
	d.fullscreen = true
	d.enters++
	return nil
}

func (d *fakeDisplay) ExitFullscreen() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fullscreen = false
	d.exits++
	return nil
}

func (d *fakeDisplay) Fullscreen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fullscreen
}

func (d *fakeDisplay) enterCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enters
}

func TestMonitorCountsTabSwitches(t *testing.T) {
	var violations []ViolationType
	cfg := DefaultMonitorConfig()
	cfg.EnforceFullscreen = false
	cfg.OnViolation = func(vt ViolationType) { violations = append(violations, vt) }

	m := NewMonitor(&fakeDisplay{}, testLogger(), cfg)
	m.Start()

	m.HandleVisibilityChange(true)
	m.HandleVisibilityChange(false) // becoming visible is not a violation
	m.HandleVisibilityChange(true)

	tabs, exits := m.Counts()
	assert.Equal(t, 2, tabs)
	assert.Equal(t, 0, exits)
	assert.Equal(t, []ViolationType{ViolationTabSwitch, ViolationTabSwitch}, violations)
}

func TestMonitorFullscreenExitNeedsPriorFullscreen(t *testing.T) {
	cfg := DefaultMonitorConfig()
	cfg.EnforceFullscreen = false

	m := NewMonitor(&fakeDisplay{}, testLogger(), cfg)
	m.Start()

	// Never was fullscreen: a false event is not an exit.
	m.HandleFullscreenChange(false)
	_, exits := m.Counts()
	assert.Equal(t, 0, exits)

	m.HandleFullscreenChange(true)
	m.HandleFullscreenChange(false)
	_, exits = m.Counts()
	assert.Equal(t, 1, exits)

	violations := m.Violations()
	require.Len(t, violations, 1)
	assert.Equal(t, ViolationFullscreenExit, violations[0].Type)
}

func TestMonitorMaxViolationsLatchesOnce(t *testing.T) {
	fired := 0
	cfg := DefaultMonitorConfig()
	cfg.EnforceFullscreen = false
	cfg.MaxViolations = 2
	cfg.OnMaxViolationsReached = func() { fired++ }

	m := NewMonitor(&fakeDisplay{}, testLogger(), cfg)
	m.Start()

	m.HandleVisibilityChange(true)
	assert.Equal(t, 0, fired, "below ceiling must not fire")

	m.HandleVisibilityChange(true)
	assert.Equal(t, 1, fired, "ceiling crossing fires exactly once")

	// Counters keep rising past the ceiling, the callback stays latched.
	m.HandleVisibilityChange(true)
	m.HandleFullscreenChange(true)
	m.HandleFullscreenChange(false)
	assert.Equal(t, 1, fired)

	tabs, exits := m.Counts()
	assert.Equal(t, 3, tabs)
	assert.Equal(t, 1, exits)
}

func TestMonitorMixedViolationsShareCeiling(t *testing.T) {
	fired := 0
	cfg := DefaultMonitorConfig()
	cfg.EnforceFullscreen = false
	cfg.MaxViolations = 2
	cfg.OnMaxViolationsReached = func() { fired++ }

	m := NewMonitor(&fakeDisplay{}, testLogger(), cfg)
	m.Start()

	m.HandleFullscreenChange(true)
	m.HandleFullscreenChange(false)
	m.HandleVisibilityChange(true)
	assert.Equal(t, 1, fired)
}

func TestMonitorIgnoresEventsWhenInactive(t *testing.T) {
	cfg := DefaultMonitorConfig()
	cfg.EnforceFullscreen = false

	m := NewMonitor(&fakeDisplay{}, testLogger(), cfg)

	// Before Start.
	m.HandleVisibilityChange(true)
	m.HandleFullscreenChange(true)
	m.HandleFullscreenChange(false)

	m.Start()
	m.Stop()

	// After Stop.
	m.HandleVisibilityChange(true)

	tabs, exits := m.Counts()
	assert.Equal(t, 0, tabs)
	assert.Equal(t, 0, exits)
	assert.Empty(t, m.Violations())
}

func TestMonitorReentersFullscreenAfterDelay(t *testing.T) {
	display := &fakeDisplay{}
	cfg := DefaultMonitorConfig()
	cfg.ReentryDelay = 10 * time.Millisecond

	m := NewMonitor(display, testLogger(), cfg)
	m.Start()
	require.Equal(t, 1, display.enterCount())

	display.ExitFullscreen() // host leaves fullscreen
	m.HandleFullscreenChange(false)

	assert.Eventually(t, func() bool {
		return display.enterCount() == 2 && display.Fullscreen()
	}, time.Second, 5*time.Millisecond)
}

func TestMonitorNoReentryAfterStop(t *testing.T) {
	display := &fakeDisplay{}
	cfg := DefaultMonitorConfig()
	cfg.ReentryDelay = 10 * time.Millisecond

	m := NewMonitor(display, testLogger(), cfg)
	m.Start()
	display.ExitFullscreen()
	m.HandleFullscreenChange(false)
	m.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, display.enterCount())
	assert.False(t, display.Fullscreen())
}

func TestMonitorSurvivesFullscreenDenial(t *testing.T) {
	display := &fakeDisplay{enterErr: assert.AnError}
	m := NewMonitor(display, testLogger(), DefaultMonitorConfig())

	// Denied fullscreen is non-fatal; violations still count.
	m.Start()
	m.HandleVisibilityChange(true)

	tabs, _ := m.Counts()
	assert.Equal(t, 1, tabs)
}
