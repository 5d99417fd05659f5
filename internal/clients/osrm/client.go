// Package osrm implements the fallback routing provider client, an
// OSRM-compatible route API. Generic driving routes only; it has no
// notion of vehicle dimensions.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twpayne/go-polyline"

	"github.com/roamroute/server/internal/routing"
)

// ProviderName tags errors and route metadata from this client
const ProviderName = "osrm"

// Client provides access to an OSRM-compatible route API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new OSRM client. baseURL without trailing slash,
// e.g. "https://router.project-osrm.org".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name implements routing.Provider
func (c *Client) Name() string { return ProviderName }

// SupportsVehicleProfiles implements routing.Provider
func (c *Client) SupportsVehicleProfiles() bool { return false }

// ComputeRoutes requests a generic driving route for the ordered
// waypoints. The profile and vehicle arguments are accepted for
// interface compatibility and ignored; callers append the corresponding
// warning when a vehicle profile was requested.
func (c *Client) ComputeRoutes(ctx context.Context, waypoints []routing.Waypoint, profile routing.Profile, vehicle *routing.VehicleProfile, opts routing.Options) ([]routing.RouteAlternative, error) {
	coords := make([]string, len(waypoints))
	for i, w := range waypoints {
		coords[i] = fmt.Sprintf("%.6f,%.6f", w.Longitude, w.Latitude)
	}

	params := url.Values{}
	params.Set("overview", "full")
	if opts.Instructions {
		params.Set("steps", "true")
	}
	if opts.Alternatives > 0 {
		params.Set("alternatives", fmt.Sprintf("%d", opts.Alternatives))
	}

	requestURL := fmt.Sprintf("%s/route/v1/driving/%s?%s",
		c.baseURL, strings.Join(coords, ";"), params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

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
		return nil, fmt.Errorf("route API error %d: %s", resp.StatusCode, string(body))
	}

	var response routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode route response: %w", err)
	}

	if response.Code != "Ok" {
		return nil, fmt.Errorf("route API returned code %q: %s", response.Code, response.Message)
	}

	return c.mapRoutes(response.Routes)
}

// mapRoutes converts native routes into canonical alternatives
func (c *Client) mapRoutes(routes []osrmRoute) ([]routing.RouteAlternative, error) {
	alternatives := make([]routing.RouteAlternative, 0, len(routes))

	for i, route := range routes {
		coords, _, err := polyline.DecodeCoords([]byte(route.Geometry))
		if err != nil {
			return nil, fmt.Errorf("failed to decode geometry for route %d: %w", i, err)
		}

		geometry := make([]routing.Position, len(coords))
		for j, c := range coords {
			geometry[j] = routing.Position{Lat: c[0], Lng: c[1]}
		}

		alt := routing.RouteAlternative{
			Geometry:  geometry,
			DistanceM: route.Distance,
			DurationS: route.Duration,
		}

		for _, leg := range route.Legs {
			segment := routing.Segment{
				DistanceM: leg.Distance,
				DurationS: leg.Duration,
			}
			for _, step := range leg.Steps {
				segment.Instructions = append(segment.Instructions, routing.Instruction{
					Text:      instructionText(step),
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

// instructionText builds a human-readable instruction from the OSRM
// maneuver, which unlike the primary provider carries no prose
func instructionText(step osrmStep) string {
	action := step.Maneuver.Type
	if step.Maneuver.Modifier != "" {
		action = fmt.Sprintf("%s %s", step.Maneuver.Type, step.Maneuver.Modifier)
	}
	if step.Name != "" {
		return fmt.Sprintf("%s onto %s", action, step.Name)
	}
	return action
}

// routeResponse is the native response structure
type routeResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64   `json:"distance"`
	Duration float64   `json:"duration"`
	Geometry string    `json:"geometry"`
	Legs     []osrmLeg `json:"legs"`
}

type osrmLeg struct {
	Distance float64    `json:"distance"`
	Duration float64    `json:"duration"`
	Steps    []osrmStep `json:"steps"`
}

type osrmStep struct {
	Name     string       `json:"name"`
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Maneuver osrmManeuver `json:"maneuver"`
}

type osrmManeuver struct {
	Type     string `json:"type"`
	Modifier string `json:"modifier,omitempty"`
}
