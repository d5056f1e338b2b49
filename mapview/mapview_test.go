package mapview

import (
	"testing"

	"campusnav/models"
)

func ops(cmds []Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Op
	}
	return out
}

func TestDrainClears(t *testing.T) {
	b := NewBridge()
	b.SetCursorStyle("crosshair")
	b.PlaceMarker(models.Coordinate{Lat: 8.99, Lon: 7.38}, "start")
	got := b.Drain()
	if len(got) != 2 || got[0].Op != "setCursor" || got[1].Op != "placeMarker" {
		t.Fatalf("drained %v", ops(got))
	}
	if again := b.Drain(); len(again) != 0 {
		t.Errorf("second drain should be empty, got %v", ops(again))
	}
}

func TestAddRouteLayerReplacesPrevious(t *testing.T) {
	b := NewBridge()
	geom := []models.LonLat{{7.38, 8.99}, {7.39, 8.99}}
	b.AddRouteLayer(geom, RouteStyle{Color: "#3b82f6", Width: 6})
	first := ops(b.Drain())
	if len(first) != 1 || first[0] != "addRouteLayer" {
		t.Fatalf("first add: %v", first)
	}
	// a second add must remove the live layer before re-adding
	b.AddRouteLayer(geom, RouteStyle{Color: "#10b981", Width: 5, Dashed: true})
	second := ops(b.Drain())
	if len(second) != 2 || second[0] != "removeRouteLayer" || second[1] != "addRouteLayer" {
		t.Fatalf("second add: %v", second)
	}
}

func TestRemoveRouteLayerResetsState(t *testing.T) {
	b := NewBridge()
	geom := []models.LonLat{{7.38, 8.99}, {7.39, 8.99}}
	b.AddRouteLayer(geom, RouteStyle{})
	b.RemoveRouteLayer()
	b.Drain()
	// after an explicit remove, the next add needs no replace
	b.AddRouteLayer(geom, RouteStyle{})
	got := ops(b.Drain())
	if len(got) != 1 || got[0] != "addRouteLayer" {
		t.Errorf("add after remove: %v", got)
	}
}

func TestMarkerRoles(t *testing.T) {
	b := NewBridge()
	b.PlaceMarker(models.Coordinate{Lat: 8.99, Lon: 7.38}, "start")
	b.RemoveMarker("start")
	got := b.Drain()
	if got[0].Args["role"] != "start" || got[1].Args["role"] != "start" {
		t.Errorf("marker roles not carried: %v", got)
	}
}
