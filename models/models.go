package models

import (
	"fmt"
	"time"
)

type TransportMode string

const (
	ModeDriving TransportMode = "driving"
	ModeWalking TransportMode = "walking"
)

func (m TransportMode) Valid() bool {
	return m == ModeDriving || m == ModeWalking
}

// SelectionMode says which endpoint the next map click assigns.
type SelectionMode string

const (
	SelectionNone  SelectionMode = ""
	SelectionStart SelectionMode = "setStart"
	SelectionEnd   SelectionMode = "setEnd"
)

// Coordinate in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// LonLat is a geometry vertex in the (lon, lat) order the map engine and
// the routing backend both use.
type LonLat [2]float64

func (p LonLat) Lon() float64 { return p[0] }
func (p LonLat) Lat() float64 { return p[1] }

type DirectionStep struct {
	Text           string  `json:"text"`
	DistanceMeters float64 `json:"distance_m"`
}

type RouteResult struct {
	Geometry             []LonLat
	Directions           []DirectionStep
	TotalDistanceMeters  float64
	EstimatedTimeSeconds float64
	Mode                 TransportMode
}

// Summary is what the directions panel shows above the step list.
type RouteSummary struct {
	TotalDistanceMeters  float64
	EstimatedTimeSeconds float64
	Mode                 TransportMode
}

func (r *RouteResult) Summary() *RouteSummary {
	return &RouteSummary{
		TotalDistanceMeters:  r.TotalDistanceMeters,
		EstimatedTimeSeconds: r.EstimatedTimeSeconds,
		Mode:                 r.Mode,
	}
}

func (s *RouteSummary) EstimatedTime() time.Duration {
	return time.Duration(s.EstimatedTimeSeconds * float64(time.Second))
}

// Voice describes one synthesis voice the speech device can render.
// LocalService voices work without network access.
type Voice struct {
	Name         string
	Language     string
	LocalService bool
}

// Place is a campus point of interest from the places directory.
type Place struct {
	ID       uint32  `db:"id"`
	Name     string  `db:"name"`
	Category string  `db:"category"`
	Lat      float64 `db:"lat"`
	Lon      float64 `db:"lon"`
}

func (p Place) Coordinate() Coordinate {
	return Coordinate{Lat: p.Lat, Lon: p.Lon}
}
