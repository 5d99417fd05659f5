// Package ors implements the primary routing provider client, an
// OpenRouteService-compatible directions API. It is the only backend
// with vehicle dimension awareness and alternative route support.
package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/twpayne/go-polyline"

	"github.com/roamroute/server/internal/routing"
)

// ProviderName tags errors and route metadata from this client
const ProviderName = "openroute"

// Client provides access to an OpenRouteService-compatible directions API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new directions client. baseURL without trailing
// slash, e.g. "https://api.openrouteservice.org".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name implements routing.Provider
func (c *Client) Name() string { return ProviderName }

// SupportsVehicleProfiles implements routing.Provider
func (c *Client) SupportsVehicleProfiles() bool { return true }

// ComputeRoutes requests directions for the ordered waypoints and maps
// the native response into canonical route alternatives
func (c *Client) ComputeRoutes(ctx context.Context, waypoints []routing.Waypoint, profile routing.Profile, vehicle *routing.VehicleProfile, opts routing.Options) ([]routing.RouteAlternative, error) {
	coordinates := make([][]float64, len(waypoints))
	for i, w := range waypoints {
		coordinates[i] = []float64{w.Longitude, w.Latitude}
	}

	requestBody := directionsRequest{
		Coordinates:  coordinates,
		Instructions: opts.Instructions,
	}

	if opts.Alternatives > 0 {
		requestBody.AlternativeRoutes = &alternativeRoutes{
			TargetCount: opts.Alternatives + 1,
		}
	}

	if vehicle != nil && profile == routing.ProfileHeavy {
		requestBody.Options = &requestOptions{
			ProfileParams: profileParams{
				Restrictions: vehicleRestrictions{
					Height: vehicle.HeightM,
					Width:  vehicle.WidthM,
					Length: vehicle.LengthM,
					Weight: vehicle.WeightT,
				},
			},
		}
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal directions request: %w", err)
	}

	requestURL := fmt.Sprintf("%s/v2/directions/%s/json", c.baseURL, profile)
	req, err := http.NewRequestWithContext(ctx, "POST", requestURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 {
		return nil, fmt.Errorf("rate limit exceeded")
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("directions API error %d: %s", resp.StatusCode, string(body))
	}

	var response directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode directions response: %w", err)
	}

	return c.mapRoutes(response.Routes)
}

// mapRoutes converts native routes into canonical alternatives,
// decoding the encoded polyline geometry
func (c *Client) mapRoutes(routes []directionsRoute) ([]routing.RouteAlternative, error) {
	alternatives := make([]routing.RouteAlternative, 0, len(routes))

	for i, route := range routes {
		geometry, err := decodeGeometry(route.Geometry)
		if err != nil {
			return nil, fmt.Errorf("failed to decode geometry for route %d: %w", i, err)
		}

		alt := routing.RouteAlternative{
			Geometry:  geometry,
			DistanceM: route.Summary.Distance,
			DurationS: route.Summary.Duration,
		}

		for _, seg := range route.Segments {
			segment := routing.Segment{
				DistanceM: seg.Distance,
				DurationS: seg.Duration,
			}
			for _, step := range seg.Steps {
				segment.Instructions = append(segment.Instructions, routing.Instruction{
					Text:      step.Instruction,
					DistanceM: step.Distance,
					DurationS: step.Duration,
				})
			}
			alt.Segments = append(alt.Segments, segment)
		}

		alternatives = append(alternatives, alt)
	}

	return alternatives, nil
}

// decodeGeometry decodes the provider's encoded polyline (lat/lng
// pairs, precision 5) into canonical lng/lat positions
func decodeGeometry(encoded string) ([]routing.Position, error) {
	if encoded == "" {
		return nil, fmt.Errorf("empty route geometry")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}

	positions := make([]routing.Position, len(coords))
	for i, c := range coords {
		positions[i] = routing.Position{Lat: c[0], Lng: c[1]}
	}
	return positions, nil
}

// directionsRequest is the native request body
type directionsRequest struct {
	Coordinates       [][]float64        `json:"coordinates"`
	Instructions      bool               `json:"instructions"`
	AlternativeRoutes *alternativeRoutes `json:"alternative_routes,omitempty"`
	Options           *requestOptions    `json:"options,omitempty"`
}

type alternativeRoutes struct {
	TargetCount int `json:"target_count"`
}

type requestOptions struct {
	ProfileParams profileParams `json:"profile_params"`
}

type profileParams struct {
	Restrictions vehicleRestrictions `json:"restrictions"`
}

type vehicleRestrictions struct {
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
	Weight float64 `json:"weight"`
}

// directionsResponse is the native response structure
type directionsResponse struct {
	Routes []directionsRoute `json:"routes"`
}

type directionsRoute struct {
	Summary  routeSummary   `json:"summary"`
	Geometry string         `json:"geometry"`
	Segments []routeSegment `json:"segments"`
}

type routeSummary struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

type routeSegment struct {
	Distance float64     `json:"distance"`
	Duration float64     `json:"duration"`
	Steps    []routeStep `json:"steps"`
}

type routeStep struct {
	Instruction string  `json:"instruction"`
	Distance    float64 `json:"distance"`
	Duration    float64 `json:"duration"`
}
