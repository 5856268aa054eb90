// README: Station service tests (assignment, fallback, tie-break, CRUD).
package station

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kavach/internal/types"
)

var reportAt = types.Point{Lat: 23.0225, Lng: 72.5714}

// kmNorth offsets p by km along the meridian.
func kmNorth(p types.Point, km float64) types.Point {
	return types.Point{Lat: p.Lat + km/111.195, Lng: p.Lng}
}

func newStation(id, district string, p types.Point) Station {
	return Station{ID: types.ID(id), Name: "PS " + id, District: district, Location: p, IsActive: true}
}

func TestFindNearestStation_PicksClosestInDistrict(t *testing.T) {
	repo := newMemoryRepo(
		newStation("near", "Ahmedabad", kmNorth(reportAt, 2)),
		newStation("far", "Ahmedabad", kmNorth(reportAt, 5)),
	)
	svc := NewService(repo, nil)

	st, err := svc.FindNearestStation(context.Background(), reportAt, "Ahmedabad")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, types.ID("near"), st.ID)
	assert.Equal(t, []string{"ListActive:Ahmedabad"}, repo.calls)
}

func TestFindNearestStation_DistrictBeatsCloserOutsider(t *testing.T) {
	repo := newMemoryRepo(
		newStation("outsider", "Gandhinagar", kmNorth(reportAt, 1)),
		newStation("local", "Ahmedabad", kmNorth(reportAt, 8)),
	)
	svc := NewService(repo, nil)

	st, err := svc.FindNearestStation(context.Background(), reportAt, "Ahmedabad")
	require.NoError(t, err)
	assert.Equal(t, types.ID("local"), st.ID)
}

func TestFindNearestStation_FallsBackToAllActive(t *testing.T) {
	repo := newMemoryRepo(
		newStation("a", "Ahmedabad", kmNorth(reportAt, 3)),
		newStation("b", "Gandhinagar", kmNorth(reportAt, 20)),
	)
	svc := NewService(repo, nil)

	st, err := svc.FindNearestStation(context.Background(), reportAt, "Unknown")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, types.ID("a"), st.ID)
	assert.Equal(t, []string{"ListActive:Unknown", "ListActive:"}, repo.calls)
}

func TestFindNearestStation_NoneAvailable(t *testing.T) {
	inactive := newStation("closed", "Ahmedabad", reportAt)
	inactive.IsActive = false
	svc := NewService(newMemoryRepo(inactive), nil)

	st, err := svc.FindNearestStation(context.Background(), reportAt, "Ahmedabad")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestFindNearestStation_TieBreaksOnSmallestID(t *testing.T) {
	// co-located stations
	shared := kmNorth(reportAt, 3)
	repo := newMemoryRepo(
		newStation("st-b", "Ahmedabad", shared),
		newStation("st-a", "Ahmedabad", shared),
		newStation("st-c", "Ahmedabad", shared),
		newStation("st-far", "Ahmedabad", kmNorth(reportAt, 4)),
	)
	svc := NewService(repo, nil)

	for i := 0; i < 20; i++ {
		st, err := svc.FindNearestStation(context.Background(), reportAt, "Ahmedabad")
		require.NoError(t, err)
		require.Equal(t, types.ID("st-a"), st.ID, "iteration %d", i)
	}
}

func TestFindNearestStation_RepositoryErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	repo := newMemoryRepo()
	repo.err = boom
	svc := NewService(repo, nil)

	st, err := svc.FindNearestStation(context.Background(), reportAt, "Ahmedabad")
	assert.Nil(t, st)
	assert.ErrorIs(t, err, boom)
}

type stubFinder struct{ pick types.ID }

func (f stubFinder) Nearest(p types.Point, candidates []Station) (Station, float64, bool) {
	for _, c := range candidates {
		if c.ID == f.pick {
			return c, 0, true
		}
	}
	return Station{}, 0, false
}

func TestFindNearestStation_CustomFinder(t *testing.T) {
	repo := newMemoryRepo(
		newStation("near", "Ahmedabad", kmNorth(reportAt, 1)),
		newStation("chosen", "Ahmedabad", kmNorth(reportAt, 9)),
	)
	svc := NewService(repo, nil).WithFinder(stubFinder{pick: "chosen"})

	st, err := svc.FindNearestStation(context.Background(), reportAt, "Ahmedabad")
	require.NoError(t, err)
	assert.Equal(t, types.ID("chosen"), st.ID)
}

func TestLinearScan_Empty(t *testing.T) {
	_, _, ok := LinearScan{}.Nearest(reportAt, nil)
	assert.False(t, ok)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  CreateCommand
	}{
		{"missing name", CreateCommand{District: "Ahmedabad", Location: reportAt}},
		{"missing district", CreateCommand{Name: "Navrangpura PS", Location: reportAt}},
		{"bad coordinate", CreateCommand{Name: "Navrangpura PS", District: "Ahmedabad", Location: types.Point{Lat: 91}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.cmd)
			assert.ErrorIs(t, err, ErrBadRequest)
		})
	}
}

func TestCreateUpdateList(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	st, err := svc.Create(ctx, CreateCommand{Name: " Navrangpura PS ", District: "Ahmedabad", Location: reportAt})
	require.NoError(t, err)
	assert.NotEmpty(t, st.ID)
	assert.Equal(t, "Navrangpura PS", st.Name)
	assert.True(t, st.IsActive)
	assert.False(t, st.CreatedAt.IsZero())

	inactive := false
	district := "Gandhinagar"
	updated, err := svc.Update(ctx, st.ID, UpdateCommand{District: &district, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Gandhinagar", updated.District)
	assert.False(t, updated.IsActive)

	districts, err := svc.ListDistricts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gandhinagar"}, districts)

	_, err = svc.Update(ctx, "missing", UpdateCommand{})
	assert.ErrorIs(t, err, ErrNotFound)
}

type fakeChecker struct {
	open bool
	err  error
}

func (f fakeChecker) HasOpenReports(ctx context.Context, stationID types.ID) (bool, error) {
	return f.open, f.err
}

func TestDelete_Guard(t *testing.T) {
	ctx := context.Background()

	t.Run("open reports block delete", func(t *testing.T) {
		repo := newMemoryRepo(newStation("s1", "Ahmedabad", reportAt))
		svc := NewService(repo, nil)
		svc.SetReportChecker(fakeChecker{open: true})

		assert.ErrorIs(t, svc.Delete(ctx, "s1"), ErrStationInUse)
		_, err := repo.Get(ctx, "s1")
		assert.NoError(t, err)
	})

	t.Run("checker error propagates", func(t *testing.T) {
		boom := errors.New("timeout")
		svc := NewService(newMemoryRepo(newStation("s1", "Ahmedabad", reportAt)), nil)
		svc.SetReportChecker(fakeChecker{err: boom})

		assert.ErrorIs(t, svc.Delete(ctx, "s1"), boom)
	})

	t.Run("no open reports", func(t *testing.T) {
		repo := newMemoryRepo(newStation("s1", "Ahmedabad", reportAt))
		svc := NewService(repo, nil)
		svc.SetReportChecker(fakeChecker{})

		require.NoError(t, svc.Delete(ctx, "s1"))
		assert.ErrorIs(t, svc.Delete(ctx, "s1"), ErrNotFound)
	})
}
