package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kavach/internal/types"
)

func TestTimeOfDay(t *testing.T) {
	cases := map[int]string{
		0: "night", 5: "night", 6: "morning", 11: "morning",
		12: "afternoon", 16: "afternoon", 17: "evening", 20: "evening",
		21: "night", 23: "night",
	}
	for hour, want := range cases {
		assert.Equal(t, want, timeOfDay(hour), "hour %d", hour)
	}
}

func TestStats(t *testing.T) {
	st := types.ID("st-1")
	mk := func(id string, status Status, crime, district string, hour int, urgent bool, stationID *types.ID, age time.Duration) Report {
		return Report{
			ID: types.ID(id), Status: status, CrimeType: crime, District: district,
			OccurredAt: time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC),
			IsUrgent:   urgent, StationID: stationID, Location: ahmedabad,
			CreatedAt:  fixedNow.Add(-age),
		}
	}
	repo := newMemoryRepo(
		mk("a", StatusPending, "Theft", "Ahmedabad", 8, true, &st, time.Hour),
		mk("b", StatusResolved, "Theft", "Ahmedabad", 13, false, &st, 2*time.Hour),
		mk("c", StatusPending, "Assault", "", 22, false, nil, 3*time.Hour),
		mk("old", StatusClosed, "Fraud", "Surat", 18, false, &st, 60*24*time.Hour),
	)
	svc := newTestService(repo, &fakeStations{}, Options{})
	ctx := context.Background()

	got, err := svc.Stats(ctx, StatsQuery{Range: RangeMonth})
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalReports)
	assert.Equal(t, 1, got.Urgent)
	assert.Equal(t, 1, got.Unassigned)
	assert.Equal(t, 2, got.ByStatus[StatusPending])
	assert.Equal(t, 0, got.ByStatus[StatusClosed])
	assert.Equal(t, map[string]int{"Theft": 2, "Assault": 1}, got.ByCrimeType)
	assert.Equal(t, map[string]int{"Ahmedabad": 2, "Unknown": 1}, got.ByDistrict)
	assert.Equal(t, map[string]int{"morning": 1, "afternoon": 1, "evening": 0, "night": 1}, got.ByTimeOfDay)

	all, err := svc.Stats(ctx, StatsQuery{Range: RangeAll, StationID: st})
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalReports)

	_, err = svc.Stats(ctx, StatsQuery{Range: "decade"})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestHeatmap_WeightsByUrgency(t *testing.T) {
	repo := newMemoryRepo(
		Report{ID: "a", Location: ahmedabad, IsUrgent: true, CreatedAt: fixedNow},
		Report{ID: "b", Location: types.Point{Lat: 23.02251, Lng: 72.57141}, CreatedAt: fixedNow},
		Report{ID: "c", Location: types.Point{Lat: 21.1702, Lng: 72.8311}, CreatedAt: fixedNow},
	)
	svc := newTestService(repo, &fakeStations{}, Options{})

	hm, err := svc.Heatmap(context.Background(), HeatmapQuery{Range: RangeWeek})
	require.NoError(t, err)
	require.Len(t, hm.Points, 2)
	assert.Equal(t, 3, hm.Points[0].Weight)
	assert.Equal(t, 1, hm.Points[1].Weight)
	assert.InDelta(t, ahmedabad.Lat, hm.Points[0].Lat, 0.05)
	assert.Equal(t, 3, hm.Stats.TotalReports)

	_, err = svc.Heatmap(context.Background(), HeatmapQuery{Resolution: 16})
	assert.ErrorIs(t, err, ErrBadRequest)
}
