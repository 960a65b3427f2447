// Package oraclehttp is the gobreaker-guarded HTTP client
// internal/adapter/cache.CachedOracle falls back to on a cache miss — the
// "external service" leg of internal/grid.DistanceOracle (spec.md §6).
// Grounded on the teacher's circuit-breaker-wrapped HTTP client pattern
// (internal/infrastructure/circuitbreaker/http.go), rebuilt here against
// sony/gobreaker directly since SPEC_FULL.md names gobreaker specifically
// for this leg.
package oraclehttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type routingRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

type routingResponse struct {
	DistanceKm float64 `json:"distance_km"`
	Found      bool    `json:"found"`
}

// Client calls an off-repo routing provider's distance endpoint, behind a
// circuit breaker so a struggling provider can't stall every duty the
// schedule generator plans.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewClient builds a Client. baseURL is the routing provider's root, e.g.
// "https://routing.internal/v1".
func NewClient(baseURL string, log *zap.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "distance-oracle",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("distance oracle circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 3 * time.Second},
		breaker: cb,
		log:     log,
	}
}

// Distance implements cache.RoutingClient.
func (c *Client) Distance(ctx context.Context, origin, destination string) (float64, bool, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.call(ctx, origin, destination)
	})
	if err != nil {
		return 0, false, err
	}
	resp := result.(routingResponse)
	return resp.DistanceKm, resp.Found, nil
}

func (c *Client) call(ctx context.Context, origin, destination string) (routingResponse, error) {
	body, err := json.Marshal(routingRequest{Origin: origin, Destination: destination})
	if err != nil {
		return routingResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/distance", bytes.NewReader(body))
	if err != nil {
		return routingResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return routingResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return routingResponse{}, fmt.Errorf("oraclehttp: server error %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return routingResponse{Found: false}, nil
	}

	var out routingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return routingResponse{}, fmt.Errorf("oraclehttp: decode response: %w", err)
	}
	return out, nil
}
