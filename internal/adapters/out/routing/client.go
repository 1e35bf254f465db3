// Package routing implements the route planner port against an external
// routing service speaking a small JSON-over-HTTP protocol. The tracking flow
// treats this collaborator as best-effort: callers fall back to heuristics
// when a request fails, so errors here are returned plainly and never
// wrapped into retries.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Client is an HTTP client for the routing service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a routing client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RouteDuration asks the routing service for the estimated travel time
// between two points.
func (c *Client) RouteDuration(ctx context.Context, from, to kernel.GeoPoint) (time.Duration, error) {
	query := url.Values{}
	query.Set("from_lat", formatCoordinate(from.Lat()))
	query.Set("from_lng", formatCoordinate(from.Lng()))
	query.Set("to_lat", formatCoordinate(to.Lat()))
	query.Set("to_lng", formatCoordinate(to.Lng()))

	var response struct {
		DurationSeconds float64 `json:"duration_seconds"`
	}
	if err := c.get(ctx, "/route", query, &response); err != nil {
		return 0, err
	}

	if response.DurationSeconds < 0 {
		return 0, fmt.Errorf("routing service returned negative duration %f", response.DurationSeconds)
	}

	return time.Duration(response.DurationSeconds * float64(time.Second)), nil
}

// ReverseGeocode asks the routing service for a human-readable address of
// the given point.
func (c *Client) ReverseGeocode(ctx context.Context, point kernel.GeoPoint) (string, error) {
	query := url.Values{}
	query.Set("lat", formatCoordinate(point.Lat()))
	query.Set("lng", formatCoordinate(point.Lng()))

	var response struct {
		Address string `json:"address"`
	}
	if err := c.get(ctx, "/reverse", query, &response); err != nil {
		return "", err
	}

	return response.Address, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	requestURL := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("routing service responded with status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func formatCoordinate(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
