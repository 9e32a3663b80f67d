package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
	tripDomain "github.com/track-asia/service-navigation/internal/domain/trip"
)

type memoryTripRepo struct {
	mu    sync.Mutex
	trips []*tripDomain.Trip
	err   error
}

func (m *memoryTripRepo) Save(_ context.Context, t *tripDomain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.trips = append(m.trips, t)
	return nil
}

func (m *memoryTripRepo) FindByID(_ context.Context, id uuid.UUID) (*tripDomain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.ID() == id {
			return t, nil
		}
	}
	return nil, tripDomain.ErrTripNotFound
}

func (m *memoryTripRepo) ListRecent(_ context.Context, page, limit int) ([]*tripDomain.Trip, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sorted := append([]*tripDomain.Trip(nil), m.trips...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EndedAt().After(sorted[j].EndedAt()) })

	start := (page - 1) * limit
	if start >= len(sorted) {
		return nil, int64(len(sorted)), nil
	}
	end := start + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end], int64(len(sorted)), nil
}

func TestTripRecorder_SavesStartedThenStoppedNavigation(t *testing.T) {
	repo := &memoryTripRepo{}
	rec := NewTripRecorder(repo, zaptest.NewLogger(t))
	ctx := context.Background()
	session := uuid.New()
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, rec.Deliver(ctx, navigation.Event{
		Type:      navigation.EventStarted,
		SessionID: session,
		Timestamp: start,
		Data: navigation.RouteSummary{
			Distance:  2000,
			Duration:  200,
			Waypoints: [][]float64{{10.0, 106.0}, {10.1, 106.1}},
		},
	}))
	require.NoError(t, rec.Deliver(ctx, navigation.Event{Type: navigation.EventPaused, SessionID: session, Timestamp: start}))
	require.NoError(t, rec.Deliver(ctx, navigation.Event{
		Type:      navigation.EventStopped,
		SessionID: session,
		Timestamp: start.Add(10 * time.Minute),
		Data: navigation.StoppedData{
			WasActive: true,
			Progress:  &navigation.ProgressSnapshot{FractionTraveled: 0.25},
		},
	}))

	require.Len(t, repo.trips, 1)
	trip := repo.trips[0]
	assert.Equal(t, session, trip.SessionID())
	assert.Equal(t, 2000.0, trip.Distance())
	assert.Equal(t, 500.0, trip.DistanceTraveled())
	assert.Equal(t, start, trip.StartedAt())
	assert.Equal(t, start.Add(10*time.Minute), trip.EndedAt())
	assert.Equal(t, []navigation.Coordinate{{Latitude: 10.0, Longitude: 106.0}, {Latitude: 10.1, Longitude: 106.1}}, trip.Waypoints())
}

func TestTripRecorder_IgnoresStopWithoutStart(t *testing.T) {
	repo := &memoryTripRepo{}
	rec := NewTripRecorder(repo, zaptest.NewLogger(t))

	require.NoError(t, rec.Deliver(context.Background(), navigation.Event{
		Type:      navigation.EventStopped,
		SessionID: uuid.New(),
		Timestamp: time.Now(),
		Data:      navigation.StoppedData{},
	}))
	assert.Empty(t, repo.trips)
}

func TestTripRecorder_ReportsSaveFailure(t *testing.T) {
	repo := &memoryTripRepo{err: errors.New("db down")}
	rec := NewTripRecorder(repo, zaptest.NewLogger(t))
	session := uuid.New()
	now := time.Now()

	require.NoError(t, rec.Deliver(context.Background(), navigation.Event{
		Type: navigation.EventStarted, SessionID: session, Timestamp: now, Data: navigation.RouteSummary{},
	}))
	err := rec.Deliver(context.Background(), navigation.Event{
		Type: navigation.EventStopped, SessionID: session, Timestamp: now, Data: navigation.StoppedData{WasActive: true},
	})
	assert.Error(t, err)
}

func TestTripRecorder_RejectsMalformedStarted(t *testing.T) {
	rec := NewTripRecorder(&memoryTripRepo{}, zaptest.NewLogger(t))
	err := rec.Deliver(context.Background(), navigation.Event{Type: navigation.EventStarted, Data: "oops"})
	assert.Error(t, err)
}

func TestTripService_ListAndGet(t *testing.T) {
	repo := &memoryTripRepo{}
	svc := NewTripService(repo, zaptest.NewLogger(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		tr, err := tripDomain.NewTrip(uuid.New(), navigation.RouteSummary{Distance: 1000}, 0.5, base, base.Add(time.Duration(i+1)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, tr))
	}

	trips, total, err := svc.ListTrips(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, trips, 2)
	assert.True(t, trips[0].EndedAt.After(trips[1].EndedAt))
	assert.Equal(t, 500.0, trips[0].DistanceTraveled)

	got, err := svc.GetTrip(ctx, trips[1].ID)
	require.NoError(t, err)
	assert.Equal(t, trips[1].ID, got.ID)

	_, err = svc.GetTrip(ctx, uuid.New())
	assert.ErrorIs(t, err, tripDomain.ErrTripNotFound)
}
