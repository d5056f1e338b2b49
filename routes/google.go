package routes

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"googlemaps.github.io/maps"

	"campusnav/models"
)

var htmlTagRE = regexp.MustCompile(`<[^>]*>`)

// GoogleProvider answers route requests from the Google Directions API.
// Used for driving routes that leave campus, where the campus graph has
// no coverage.
type GoogleProvider struct {
	c      *maps.Client
	logger *slog.Logger
}

func NewGoogleProvider(apiKey string, logger *slog.Logger) (*GoogleProvider, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{c: c, logger: logger}, nil
}

func (p *GoogleProvider) Route(ctx context.Context, start, end models.Coordinate, mode models.TransportMode) (*models.RouteResult, error) {
	travelMode := maps.TravelModeDriving
	if mode == models.ModeWalking {
		travelMode = maps.TravelModeWalking
	}
	req := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", start.Lat, start.Lon),
		Destination: fmt.Sprintf("%f,%f", end.Lat, end.Lon),
		Mode:        travelMode,
	}
	rts, _, err := p.c.Directions(ctx, req)
	if err != nil {
		p.logger.Error("directions request failed", "error", err)
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	if len(rts) == 0 {
		return nil, &ServiceError{Status: 404, Message: "no route found"}
	}
	rt := rts[0]
	pts, err := rt.OverviewPolyline.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}
	res := &models.RouteResult{Mode: mode}
	for _, pt := range pts {
		res.Geometry = append(res.Geometry, models.LonLat{pt.Lng, pt.Lat})
	}
	for _, leg := range rt.Legs {
		res.TotalDistanceMeters += float64(leg.Distance.Meters)
		res.EstimatedTimeSeconds += leg.Duration.Seconds()
		for _, st := range leg.Steps {
			res.Directions = append(res.Directions, models.DirectionStep{
				Text:           htmlTagRE.ReplaceAllString(st.HTMLInstructions, ""),
				DistanceMeters: float64(st.Distance.Meters),
			})
		}
	}
	return res, nil
}
