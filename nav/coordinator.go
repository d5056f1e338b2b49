// Package nav holds the navigation state machine: start/end selection,
// route calculation, and the map/voice/UI side effects around them.
package nav

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"campusnav/mapview"
	"campusnav/models"
	"campusnav/routes"
)

// Speaker is the narration entry point the coordinator talks to.
type Speaker interface {
	Speak(text string, priority bool)
}

// StatusUI shows the route-calculating indicator and the inline
// "could not calculate" placeholder.
type StatusUI interface {
	ShowRouteLoading(on bool)
	ShowRoutePlaceholder(msg string)
}

const (
	focusZoom  = 17.0
	focusPitch = 45.0
	// which geometry vertex the initial bearing is computed against
	bearingSampleIndex = 2
)

// Coordinator owns all navigation state. Single instance per app; every
// mutation goes through its methods.
type Coordinator struct {
	logger  *slog.Logger
	m       mapview.Map
	routes  routes.Provider
	voice   Speaker
	phrases *PhraseBook
	ui      StatusUI

	onDirections func([]models.DirectionStep, *models.RouteSummary)
	onModeChange func(models.SelectionMode)

	mu      sync.Mutex
	start   *models.Coordinate
	end     *models.Coordinate
	mode    models.TransportMode
	sel     models.SelectionMode
	active  *models.RouteResult
	focused bool
	gen     int // request generation; stale results are discarded

	firstStepDelay time.Duration
	requestTimeout time.Duration
}

func NewCoordinator(logger *slog.Logger, m mapview.Map, provider routes.Provider, speaker Speaker) *Coordinator {
	return &Coordinator{
		logger:         logger,
		m:              m,
		routes:         provider,
		voice:          speaker,
		phrases:        NewPhraseBook(),
		mode:           models.ModeDriving,
		firstStepDelay: 2 * time.Second,
		requestTimeout: 20 * time.Second,
	}
}

func (c *Coordinator) SetUI(ui StatusUI)        { c.ui = ui }
func (c *Coordinator) SetPhrases(p *PhraseBook) { c.phrases = p }

func (c *Coordinator) SetDirectionsObserver(f func([]models.DirectionStep, *models.RouteSummary)) {
	c.onDirections = f
}
func (c *Coordinator) SetModeObserver(f func(models.SelectionMode)) { c.onModeChange = f }

// SetTransportMode stores the mode for the next route request; unknown
// modes are ignored.
func (c *Coordinator) SetTransportMode(mode models.TransportMode) {
	if !mode.Valid() {
		return
	}
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
}

// SetPointSelectionMode toggles which endpoint the next map click
// assigns. Requesting the current mode again reverts to none.
func (c *Coordinator) SetPointSelectionMode(mode models.SelectionMode, silent bool) {
	c.mu.Lock()
	if mode == c.sel {
		mode = models.SelectionNone
	}
	changed := c.applySelectionLocked(mode, silent)
	c.mu.Unlock()
	c.notifyMode(changed, mode)
}

// applySelectionLocked is the only place sel changes. Callers hold c.mu
// and must pass the returned flag to notifyMode after unlocking; the
// observer may block on the UI loop.
func (c *Coordinator) applySelectionLocked(mode models.SelectionMode, silent bool) bool {
	if mode == c.sel {
		return false
	}
	c.sel = mode
	cursor := ""
	if mode != models.SelectionNone {
		cursor = "crosshair"
	}
	c.m.SetCursorStyle(cursor)
	if silent {
		return true
	}
	switch mode {
	case models.SelectionStart:
		c.voice.Speak(c.phrases.Pick(EventSetStart), false)
	case models.SelectionEnd:
		c.voice.Speak(c.phrases.Pick(EventSetEnd), false)
	}
	return true
}

func (c *Coordinator) notifyMode(changed bool, mode models.SelectionMode) {
	if changed && c.onModeChange != nil {
		c.onModeChange(mode)
	}
}

// HandleMapClick is the central state-transition entry point; one call
// per map click.
func (c *Coordinator) HandleMapClick(pt models.Coordinate) {
	c.mu.Lock()
	switch c.sel {
	case models.SelectionStart:
		c.start = &pt
		c.m.PlaceMarker(pt, "start")
		if c.end != nil {
			changed := c.applySelectionLocked(models.SelectionNone, true)
			c.mu.Unlock()
			c.notifyMode(changed, models.SelectionNone)
			c.CalculateRoute()
			return
		}
		// two-tap flow: confirm the start, advance silently; the
		// confirmation already tells the user what comes next
		c.voice.Speak(c.phrases.Pick(EventStartSet), false)
		changed := c.applySelectionLocked(models.SelectionEnd, true)
		c.mu.Unlock()
		c.notifyMode(changed, models.SelectionEnd)
	case models.SelectionEnd:
		c.end = &pt
		c.m.PlaceMarker(pt, "end")
		changed := c.applySelectionLocked(models.SelectionNone, true)
		if c.start != nil {
			c.mu.Unlock()
			c.notifyMode(changed, models.SelectionNone)
			c.CalculateRoute()
			return
		}
		c.voice.Speak(c.phrases.Pick(EventEndSet), false)
		c.mu.Unlock()
		c.notifyMode(changed, models.SelectionNone)
	default:
		// click belongs to feature inspection, not us
		c.mu.Unlock()
	}
}

// CalculateRoute requests a route for the current endpoints and applies
// the result. No-op without both endpoints. Blocking; run it from an
// event goroutine. Every failure path leaves the coordinator
// immediately retryable.
func (c *Coordinator) CalculateRoute() {
	c.mu.Lock()
	if c.start == nil || c.end == nil {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	start, end, mode := *c.start, *c.end, c.mode
	c.mu.Unlock()

	c.voice.Speak(c.phrases.Pick(EventCalculating), false)
	if c.ui != nil {
		c.ui.ShowRouteLoading(true)
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.requestTimeout)
	defer cancel()
	res, err := c.routes.Route(ctx, start, end, mode)
	if c.ui != nil {
		c.ui.ShowRouteLoading(false)
	}
	if err != nil {
		c.mu.Lock()
		stale := gen != c.gen
		c.mu.Unlock()
		if stale {
			// cleared or superseded while the request was in flight;
			// same rule as a stale success
			c.logger.Debug("discarding stale route failure", "error", err)
			return
		}
		c.logger.Error("route calculation failed", "error", err)
		if c.ui != nil {
			c.ui.ShowRoutePlaceholder("Could not calculate route")
		}
		c.voice.Speak(c.phrases.Pick(EventRouteFailed)+" "+err.Error(), false)
		return
	}
	c.applyRoute(gen, res)
}

func (c *Coordinator) applyRoute(gen int, res *models.RouteResult) {
	c.mu.Lock()
	if gen != c.gen {
		// cleared or superseded while the request was in flight
		c.logger.Debug("discarding stale route result")
		c.mu.Unlock()
		return
	}
	c.active = res
	c.focused = true
	c.m.RemoveRouteLayer()
	c.m.AddRouteLayer(res.Geometry, styleFor(res.Mode))
	if len(res.Geometry) > 0 {
		c.m.FlyTo(res.Geometry[0], routeBearing(res.Geometry), focusZoom, focusPitch)
	}
	c.mu.Unlock()

	if c.onDirections != nil {
		c.onDirections(res.Directions, res.Summary())
	}
	c.voice.Speak(fmt.Sprintf("Route found. %s to your destination.", FormatDistance(res.TotalDistanceMeters)), false)
	if len(res.Directions) == 0 {
		return
	}
	firstStep := res.Directions[0].Text
	if c.firstStepDelay <= 0 {
		c.voice.Speak(firstStep, false)
		return
	}
	time.AfterFunc(c.firstStepDelay, func() {
		c.mu.Lock()
		stale := gen != c.gen
		c.mu.Unlock()
		if !stale {
			c.voice.Speak(firstStep, false)
		}
	})
}

// Clear resets all navigation state and map artifacts. Safe to call
// when nothing is active.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	c.gen++ // any in-flight result is now stale
	c.start, c.end, c.active = nil, nil, nil
	c.focused = false
	changed := c.applySelectionLocked(models.SelectionNone, true)
	c.m.RemoveRouteLayer()
	c.m.RemoveMarker("start")
	c.m.RemoveMarker("end")
	c.mu.Unlock()
	c.notifyMode(changed, models.SelectionNone)
	if c.ui != nil {
		c.ui.ShowRoutePlaceholder("")
	}
	c.voice.Speak(c.phrases.Pick(EventRouteCleared), false)
	if c.onDirections != nil {
		c.onDirections(nil, nil)
	}
}

func (c *Coordinator) TransportMode() models.TransportMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Coordinator) SelectionMode() models.SelectionMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

func (c *Coordinator) ActiveRoute() *models.RouteResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Focused reports whether a route is being actively displayed.
func (c *Coordinator) Focused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused
}

func (c *Coordinator) Endpoints() (start, end *models.Coordinate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start, c.end
}

func styleFor(mode models.TransportMode) mapview.RouteStyle {
	if mode == models.ModeWalking {
		return mapview.RouteStyle{Color: "#10b981", Width: 5, Dashed: true, Glow: true}
	}
	return mapview.RouteStyle{Color: "#3b82f6", Width: 6, Glow: true}
}

// routeBearing is the camera bearing at the route start: atan2 of the
// delta between the first vertex and an early-subsequent one, degrees.
func routeBearing(geom []models.LonLat) float64 {
	if len(geom) < 2 {
		return 0
	}
	i := bearingSampleIndex
	if i >= len(geom) {
		i = len(geom) - 1
	}
	a, b := geom[0], geom[i]
	return math.Atan2(b.Lat()-a.Lat(), b.Lon()-a.Lon()) * 180 / math.Pi
}
