// Package routes talks to route computation services. No pathfinding
// happens client-side; the campus backend (or Google, off campus) does
// the work and we shape the answer into models.RouteResult.
package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"campusnav/models"
)

// Provider computes a route between two points.
type Provider interface {
	Route(ctx context.Context, start, end models.Coordinate, mode models.TransportMode) (*models.RouteResult, error)
}

// Mean travel speeds used to estimate time; the campus service reports
// distance only.
const (
	walkingSpeedMS = 1.4
	drivingSpeedMS = 8.33
)

// ServiceError carries the backend's human-readable failure message.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

// Client is the campus routing backend client.
type Client struct {
	base   string
	hc     *http.Client
	logger *slog.Logger
}

func NewClient(base string, logger *slog.Logger) *Client {
	return &Client{
		base:   base,
		hc:     &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// wire shape of the campus backend response
type routePayload struct {
	Route struct {
		Geometry struct {
			Coordinates []models.LonLat `json:"coordinates"`
		} `json:"geometry"`
	} `json:"route"`
	Directions     []models.DirectionStep `json:"directions"`
	TotalDistanceM float64                `json:"total_distance_m"`
}

type errPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) Route(ctx context.Context, start, end models.Coordinate, mode models.TransportMode) (*models.RouteResult, error) {
	q := url.Values{}
	q.Set("start", fmtLonLat(start))
	q.Set("end", fmtLonLat(end))
	q.Set("mode", string(mode))
	reqURL := c.base + "/api/v1/route?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Error("route request failed", "error", err)
		return nil, fmt.Errorf("route request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read route response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{
			Status:  resp.StatusCode,
			Message: extractMessage(body, resp.StatusCode),
		}
	}
	var payload routePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode route response: %w", err)
	}
	res := &models.RouteResult{
		Geometry:            payload.Route.Geometry.Coordinates,
		Directions:          payload.Directions,
		TotalDistanceMeters: payload.TotalDistanceM,
		Mode:                mode,
	}
	res.EstimatedTimeSeconds = estimateSeconds(payload.TotalDistanceM, mode)
	c.logger.Debug("route computed", "steps", len(res.Directions), "distance_m", res.TotalDistanceMeters)
	return res, nil
}

// extractMessage pulls a human-readable error out of the body, falling
// back to the HTTP status text.
func extractMessage(body []byte, status int) string {
	var ep errPayload
	if err := json.Unmarshal(body, &ep); err == nil {
		if ep.Message != "" {
			return ep.Message
		}
		if ep.Error != "" {
			return ep.Error
		}
	}
	return http.StatusText(status)
}

func estimateSeconds(distanceM float64, mode models.TransportMode) float64 {
	speed := drivingSpeedMS
	if mode == models.ModeWalking {
		speed = walkingSpeedMS
	}
	return distanceM / speed
}

// query order is lon,lat — same as the geometry vertices
func fmtLonLat(c models.Coordinate) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}
