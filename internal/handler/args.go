package handler

import (
	"encoding/json"
	"fmt"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
)

// parseWaypoints reads args["waypoints"] as [[lat,lng],...] or as a list of
// {latitude,longitude} objects. Range checks are left to RouteOptions.Validate.
func parseWaypoints(args map[string]any) ([]navigation.Coordinate, error) {
	raw, ok := args["waypoints"]
	if !ok || raw == nil {
		return nil, navigation.NewInvalidWaypointsError(fmt.Sprintf("At least %d waypoints are required", navigation.MinWaypoints))
	}

	switch v := raw.(type) {
	case [][]float64:
		coords := make([]navigation.Coordinate, len(v))
		for i, pair := range v {
			if len(pair) != 2 {
				return nil, navigation.NewInvalidArgumentsError(fmt.Sprintf("waypoint %d must be a [lat, lng] pair", i))
			}
			coords[i] = navigation.Coordinate{Latitude: pair[0], Longitude: pair[1]}
		}
		return coords, nil
	case []navigation.Coordinate:
		return append([]navigation.Coordinate(nil), v...), nil
	case []any:
		coords := make([]navigation.Coordinate, len(v))
		for i, item := range v {
			c, err := parseWaypoint(i, item)
			if err != nil {
				return nil, err
			}
			coords[i] = c
		}
		return coords, nil
	default:
		return nil, navigation.NewInvalidArgumentsError("waypoints must be a list")
	}
}

func parseWaypoint(i int, item any) (navigation.Coordinate, error) {
	switch w := item.(type) {
	case []any:
		if len(w) != 2 {
			return navigation.Coordinate{}, navigation.NewInvalidArgumentsError(fmt.Sprintf("waypoint %d must be a [lat, lng] pair", i))
		}
		lat, okLat := toFloat(w[0])
		lng, okLng := toFloat(w[1])
		if !okLat || !okLng {
			return navigation.Coordinate{}, navigation.NewInvalidArgumentsError(fmt.Sprintf("waypoint %d must contain numbers", i))
		}
		return navigation.Coordinate{Latitude: lat, Longitude: lng}, nil
	case []float64:
		if len(w) != 2 {
			return navigation.Coordinate{}, navigation.NewInvalidArgumentsError(fmt.Sprintf("waypoint %d must be a [lat, lng] pair", i))
		}
		return navigation.Coordinate{Latitude: w[0], Longitude: w[1]}, nil
	case map[string]any:
		lat, okLat := toFloat(firstPresent(w, "latitude", "lat"))
		lng, okLng := toFloat(firstPresent(w, "longitude", "lng", "lon"))
		if !okLat || !okLng {
			return navigation.Coordinate{}, navigation.NewInvalidArgumentsError(fmt.Sprintf("waypoint %d needs numeric latitude and longitude", i))
		}
		return navigation.Coordinate{Latitude: lat, Longitude: lng}, nil
	default:
		return navigation.Coordinate{}, navigation.NewInvalidArgumentsError(fmt.Sprintf("waypoint %d has unsupported type %T", i, item))
	}
}

// profileArg reads the travel profile from args["profile"] or args["options"]["profile"].
func profileArg(args map[string]any) string {
	if p, ok := args["profile"].(string); ok {
		return p
	}
	if opts, ok := args["options"].(map[string]any); ok {
		if p, ok := opts["profile"].(string); ok {
			return p
		}
	}
	return ""
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
