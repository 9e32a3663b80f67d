package directions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
)

const twoRoutesBody = `{
  "code": "Ok",
  "routes": [
    {
      "geometry": "_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@",
      "distance": 15234.5,
      "duration": 1203.2,
      "legs": [
        {
          "summary": "QL1A",
          "distance": 15234.5,
          "duration": 1203.2,
          "steps": [
            {
              "name": "Nguyen Van Linh",
              "distance": 800,
              "duration": 60,
              "maneuver": {"type": "depart", "instruction": "Head north on Nguyen Van Linh"},
              "voiceInstructions": [{"announcement": "Head north, then turn right"}],
              "bannerInstructions": [{"primary": {"text": "Nguyen Van Linh"}}]
            },
            {
              "name": "QL1A",
              "distance": 14434.5,
              "duration": 1143.2,
              "maneuver": {"type": "turn", "modifier": "right"}
            }
          ]
        }
      ]
    },
    {"geometry": "", "distance": 1, "duration": 1, "legs": []}
  ]
}`

func testOptions() navigation.RouteOptions {
	return navigation.NewRouteOptions([]navigation.Coordinate{
		{Latitude: 10.0, Longitude: 106.0},
		{Latitude: 10.1, Longitude: 106.1},
	}, "")
}

func newTestClient(t *testing.T, srv *httptest.Server, cfg Config) *Client {
	t.Helper()
	cfg.BaseURL = srv.URL + "/route/v1"
	c, err := NewClient(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestFetchRoute_BuildsRequestAndSelectsFirstRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/route/v1/car/106,10;106.1,10.1", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "polyline", q.Get("geometries"))
		assert.Equal(t, "true", q.Get("steps"))
		assert.Equal(t, "full", q.Get("overview"))
		assert.Equal(t, "secret", q.Get("key"))
		assert.Equal(t, "nav-test/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(twoRoutesBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{AccessToken: "secret", TokenParam: "key", UserAgent: "nav-test/1.0"})

	route, err := c.FetchRoute(context.Background(), testOptions())
	require.NoError(t, err)

	assert.Equal(t, 15234.5, route.Distance())
	assert.Equal(t, 1203.2, route.Duration())
	assert.Len(t, route.Path(), 3)
	assert.Equal(t, testOptions().Coordinates, route.Waypoints())

	legs := route.Legs()
	require.Len(t, legs, 1)
	require.Len(t, legs[0].Steps, 2)

	first := legs[0].Steps[0]
	assert.Equal(t, "Head north on Nguyen Van Linh", first.Instruction)
	assert.Equal(t, "Head north, then turn right", first.VoiceInstruction)
	assert.Equal(t, "Nguyen Van Linh", first.BannerInstruction)

	second := legs[0].Steps[1]
	assert.Equal(t, "Turn right onto QL1A", second.Instruction)
	assert.Equal(t, second.Instruction, second.VoiceInstruction)
}

func TestFetchRoute_ProfileSegments(t *testing.T) {
	var gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		_, _ = w.Write([]byte(twoRoutesBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})

	for profile, segment := range DefaultProfiles {
		opts := testOptions()
		opts.Profile = profile
		_, err := c.FetchRoute(context.Background(), opts)
		require.NoError(t, err)
		assert.Equal(t, "/route/v1/"+segment+"/106,10;106.1,10.1", gotPath.Load())
	}
}

func TestFetchRoute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr *navigation.Error
	}{
		{"service error", http.StatusForbidden, `{"code":"InvalidKey","message":"invalid access token"}`, navigation.ErrService},
		{"empty body", http.StatusOK, "", navigation.ErrEmptyResponse},
		{"whitespace body", http.StatusOK, "  \n", navigation.ErrEmptyResponse},
		{"unparsable body", http.StatusOK, `<html>oops</html>`, navigation.ErrParse},
		{"wrong shape", http.StatusOK, `{"routes": {"geometry": 1}}`, navigation.ErrParse},
		{"zero routes", http.StatusOK, `{"code":"Ok","routes":[]}`, navigation.ErrNoRouteFound},
		{"no route code", http.StatusOK, `{"code":"NoRoute","message":"Impossible route between points"}`, navigation.ErrNoRouteFound},
		{"negative distance", http.StatusOK, `{"routes":[{"geometry":"","distance":-1,"duration":1}]}`, navigation.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv, Config{})
			_, err := c.FetchRoute(context.Background(), testOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchRoute_ServiceErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	_, err := c.FetchRoute(context.Background(), testOptions())

	navErr := navigation.AsError(err)
	require.NotNil(t, navErr)
	assert.Equal(t, navigation.CategoryService, navErr.Category)
	assert.Equal(t, http.StatusTooManyRequests, navErr.StatusCode)
	assert.Contains(t, navErr.Message, "429")
	assert.Contains(t, navErr.Message, "rate limited")
}

func TestFetchRoute_TimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{Timeout: 50 * time.Millisecond})
	_, err := c.FetchRoute(context.Background(), testOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, navigation.ErrNetwork)
	assert.Equal(t, navigation.CategoryTransport, navigation.AsError(err).Category)
}

func TestFetchRoute_UnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(t, srv, Config{})
	srv.Close()

	_, err := c.FetchRoute(context.Background(), testOptions())
	assert.ErrorIs(t, err, navigation.ErrNetwork)
}

func TestFetchRoute_UndecodableGeometryKeepsRoute(t *testing.T) {
	tests := []struct {
		name     string
		geometry string
	}{
		{"truncated", `_p~iF`},
		{"outside the alphabet", `!!!!`},
		{"control bytes", `\u0000\u0001`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"routes":[{"geometry":"` + tt.geometry + `","distance":10,"duration":2}]}`))
			}))
			defer srv.Close()

			c := newTestClient(t, srv, Config{})
			route, err := c.FetchRoute(context.Background(), testOptions())
			require.NoError(t, err)
			assert.Equal(t, 10.0, route.Distance())
			assert.Nil(t, route.Path())
			assert.Nil(t, navigation.InitialProgress(route, time.Now()).Location)
		})
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
