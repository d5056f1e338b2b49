// Package mapview is the façade over the map rendering engine. The
// engine itself (Mapbox GL in the browser) stays outside this process;
// the coordinator only ever talks to the Map interface.
package mapview

import (
	"sync"

	"campusnav/models"
)

// RouteStyle controls how a route line is drawn. Glow adds a blurred
// duplicate layer beneath the line for emphasis.
type RouteStyle struct {
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
	Dashed bool    `json:"dashed"`
	Glow   bool    `json:"glow"`
}

type Map interface {
	AddRouteLayer(geometry []models.LonLat, style RouteStyle)
	RemoveRouteLayer()
	FlyTo(center models.LonLat, bearing, zoom, pitch float64)
	SetCursorStyle(style string)
	PlaceMarker(pt models.Coordinate, role string)
	RemoveMarker(role string)
}

// Command is one map operation serialized for the browser side.
type Command struct {
	Op   string         `json:"op"`
	Args map[string]any `json:"args,omitempty"`
}

// Bridge implements Map by recording commands; the embedded HTTP server
// drains them to the attached browser map. The route layer identifier is
// owned here: an add always replaces any previous layer with the same id
// (the engine errors on duplicates).
type Bridge struct {
	mu       sync.Mutex
	pending  []Command
	hasRoute bool
}

func NewBridge() *Bridge {
	return &Bridge{}
}

func (b *Bridge) push(c Command) {
	b.mu.Lock()
	b.pending = append(b.pending, c)
	b.mu.Unlock()
}

// Drain returns and clears the queued commands.
func (b *Bridge) Drain() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}

func (b *Bridge) AddRouteLayer(geometry []models.LonLat, style RouteStyle) {
	b.mu.Lock()
	if b.hasRoute {
		b.pending = append(b.pending, Command{Op: "removeRouteLayer"})
	}
	b.hasRoute = true
	b.pending = append(b.pending, Command{
		Op: "addRouteLayer",
		Args: map[string]any{
			"geometry": geometry,
			"style":    style,
		},
	})
	b.mu.Unlock()
}

func (b *Bridge) RemoveRouteLayer() {
	b.mu.Lock()
	b.hasRoute = false
	b.pending = append(b.pending, Command{Op: "removeRouteLayer"})
	b.mu.Unlock()
}

func (b *Bridge) FlyTo(center models.LonLat, bearing, zoom, pitch float64) {
	b.push(Command{
		Op: "flyTo",
		Args: map[string]any{
			"center":  center,
			"bearing": bearing,
			"zoom":    zoom,
			"pitch":   pitch,
		},
	})
}

func (b *Bridge) SetCursorStyle(style string) {
	b.push(Command{Op: "setCursor", Args: map[string]any{"style": style}})
}

func (b *Bridge) PlaceMarker(pt models.Coordinate, role string) {
	b.push(Command{
		Op: "placeMarker",
		Args: map[string]any{
			"lat":  pt.Lat,
			"lon":  pt.Lon,
			"role": role,
		},
	})
}

func (b *Bridge) RemoveMarker(role string) {
	b.push(Command{Op: "removeMarker", Args: map[string]any{"role": role}})
}
