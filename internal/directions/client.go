package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "TrackAsia Navigation Service"
	// maxBodyBytes bounds how much of a response is read into memory.
	maxBodyBytes = 8 << 20
)

// Config holds the directions service settings.
type Config struct {
	BaseURL     string
	AccessToken string
	// TokenParam is the query parameter carrying AccessToken.
	TokenParam string
	// Geometries is "polyline" or "polyline6".
	Geometries string
	UserAgent  string
	Timeout    time.Duration
	// Profiles maps a travel profile to the service path segment.
	Profiles map[navigation.Profile]string
}

// DefaultProfiles are the path segments used by OSRM-compatible services.
var DefaultProfiles = map[navigation.Profile]string{
	navigation.ProfileAutomobile: "car",
	navigation.ProfileWalking:    "foot",
	navigation.ProfileCycling:    "bike",
}

// Client fetches routes from an OSRM-compatible directions service.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger
}

// NewClient creates a Client. Zero-valued settings fall back to defaults.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("directions base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid directions base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.TokenParam == "" {
		cfg.TokenParam = "access_token"
	}
	if cfg.Geometries == "" {
		cfg.Geometries = "polyline"
	}
	if cfg.Profiles == nil {
		cfg.Profiles = DefaultProfiles
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// FetchRoute requests a route and returns the first candidate of the response.
// It performs exactly one request and never retries.
func (c *Client) FetchRoute(ctx context.Context, options navigation.RouteOptions) (navigation.Route, error) {
	u, err := c.buildURL(options)
	if err != nil {
		return navigation.Route{}, navigation.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return navigation.Route{}, navigation.NewInternalError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("requesting route",
		zap.String("profile", options.Profile.String()),
		zap.Int("waypoints", len(options.Coordinates)),
		zap.String("path", req.URL.Path),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return navigation.Route{}, navigation.NewNetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return navigation.Route{}, navigation.NewNetworkError(fmt.Errorf("read error: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return navigation.Route{}, navigation.NewServiceError(resp.StatusCode, errorDetail(body))
	}

	return c.parse(body, options)
}

func (c *Client) parse(body []byte, options navigation.RouteOptions) (navigation.Route, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return navigation.Route{}, navigation.NewEmptyResponseError()
	}

	var payload response
	if err := json.Unmarshal(body, &payload); err != nil {
		return navigation.Route{}, navigation.NewParseError(err)
	}

	if len(payload.Routes) == 0 || payload.Code == "NoRoute" {
		detail := payload.Message
		if detail == "" && payload.Code != "" && payload.Code != "Ok" {
			detail = payload.Code
		}
		return navigation.Route{}, navigation.NewNoRouteFoundError(detail)
	}

	// The first candidate always wins.
	first := payload.Routes[0]

	path, err := navigation.DecodePolyline(first.Geometry, navigation.PrecisionForGeometry(c.cfg.Geometries))
	if err != nil {
		c.logger.Warn("route geometry could not be decoded", zap.Error(err))
		path = nil
	}

	route, err := navigation.NewRoute(first.Geometry, first.Distance, first.Duration, options.Coordinates, toLegs(first.Legs), path)
	if err != nil {
		return navigation.Route{}, navigation.NewParseError(err)
	}
	return route, nil
}

// buildURL encodes {base}/{profile}/{lng1},{lat1};{lng2},{lat2};...?geometries=..&steps=..&overview=..
func (c *Client) buildURL(options navigation.RouteOptions) (string, error) {
	segment, ok := c.cfg.Profiles[options.Profile]
	if !ok {
		return "", fmt.Errorf("no path segment configured for profile %q", options.Profile)
	}

	pairs := make([]string, len(options.Coordinates))
	for i, coord := range options.Coordinates {
		pairs[i] = formatFloat(coord.Longitude) + "," + formatFloat(coord.Latitude)
	}

	params := url.Values{}
	params.Set("geometries", c.cfg.Geometries)
	params.Set("steps", strconv.FormatBool(options.IncludeSteps))
	overview := options.Overview
	if overview == "" {
		overview = "full"
	}
	params.Set("overview", overview)
	if c.cfg.AccessToken != "" {
		params.Set(c.cfg.TokenParam, c.cfg.AccessToken)
	}

	return fmt.Sprintf("%s/%s/%s?%s", c.cfg.BaseURL, segment, strings.Join(pairs, ";"), params.Encode()), nil
}

func toLegs(in []legJSON) []navigation.Leg {
	if len(in) == 0 {
		return nil
	}
	legs := make([]navigation.Leg, len(in))
	for i, l := range in {
		steps := make([]navigation.Step, len(l.Steps))
		for j, s := range l.Steps {
			steps[j] = toStep(s)
		}
		legs[i] = navigation.Leg{
			Summary:  l.Summary,
			Distance: l.Distance,
			Duration: l.Duration,
			Steps:    steps,
		}
	}
	return legs
}

func toStep(s stepJSON) navigation.Step {
	instruction := s.Maneuver.Instruction
	if instruction == "" {
		instruction = synthesizeInstruction(s.Maneuver, s.Name)
	}

	step := navigation.Step{
		Instruction:       instruction,
		Name:              s.Name,
		Distance:          s.Distance,
		Duration:          s.Duration,
		VoiceInstruction:  instruction,
		BannerInstruction: instruction,
	}
	if len(s.VoiceInstructions) > 0 && s.VoiceInstructions[0].Announcement != "" {
		step.VoiceInstruction = s.VoiceInstructions[0].Announcement
	}
	if len(s.BannerInstructions) > 0 && s.BannerInstructions[0].Primary.Text != "" {
		step.BannerInstruction = s.BannerInstructions[0].Primary.Text
	}
	return step
}

// synthesizeInstruction builds a readable instruction for services that omit maneuver text.
func synthesizeInstruction(m maneuverJSON, street string) string {
	var verb string
	switch m.Type {
	case "depart":
		verb = "Depart"
	case "arrive":
		return "You have arrived at your destination"
	case "roundabout", "rotary":
		verb = "Enter the roundabout"
	case "merge":
		verb = "Merge"
	case "fork":
		verb = "Keep"
	case "continue", "new name":
		verb = "Continue"
	case "":
		verb = "Continue"
	default:
		verb = "Turn"
	}
	if m.Modifier != "" && verb != "Depart" && verb != "Enter the roundabout" {
		verb += " " + m.Modifier
	}
	if street != "" {
		return verb + " onto " + street
	}
	return verb
}

func errorDetail(body []byte) string {
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
