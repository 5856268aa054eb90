package report

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"kavach/internal/modules/location"
	"kavach/internal/modules/station"
	"kavach/internal/types"
)

// memoryRepo is an in-memory Repository used by the package tests.
type memoryRepo struct {
	mu      sync.Mutex
	reports map[types.ID]Report
	updates map[types.ID][]Update
	recent  []RecentFilter
	err     error
	nextID  int
}

func newMemoryRepo(reports ...Report) *memoryRepo {
	m := &memoryRepo{reports: map[types.ID]Report{}, updates: map[types.ID][]Update{}}
	for _, r := range reports {
		m.reports[r.ID] = r
	}
	return m
}

func (m *memoryRepo) Create(ctx context.Context, r *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.reports[r.ID] = *r
	return nil
}

func (m *memoryRepo) Get(ctx context.Context, id types.ID) (*Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *memoryRepo) List(ctx context.Context, f ListFilter) ([]Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []Report{}
	for _, r := range m.reports {
		switch {
		case f.ReporterID != "" && r.ReporterID != f.ReporterID:
		case f.StationID != "" && (r.StationID == nil || *r.StationID != f.StationID):
		case f.District != "" && r.District != f.District:
		case f.Status != "" && r.Status != f.Status:
		case f.CrimeType != "" && r.CrimeType != f.CrimeType:
		case !f.Since.IsZero() && r.CreatedAt.Before(f.Since):
		default:
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memoryRepo) ListRecent(ctx context.Context, f RecentFilter) ([]Report, error) {
	m.mu.Lock()
	m.recent = append(m.recent, f)
	m.mu.Unlock()
	return m.List(ctx, ListFilter{Since: f.Since, CrimeType: f.CrimeType, Limit: f.Limit})
}

func (m *memoryRepo) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok || r.Status != from || r.StatusVersion != version {
		return false, nil
	}
	r.Status = to
	r.StatusVersion++
	r.UpdatedAt = at
	m.reports[id] = r
	return true, nil
}

func (m *memoryRepo) UpdateStation(ctx context.Context, id types.ID, stationID types.ID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return ErrNotFound
	}
	r.StationID = &stationID
	r.UpdatedAt = at
	m.reports[id] = r
	return nil
}

func (m *memoryRepo) UpdateDetails(ctx context.Context, id types.ID, status Status, d Details, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok || r.Status != status {
		return false, nil
	}
	r.CrimeType, r.Description, r.OccurredAt = d.CrimeType, d.Description, d.OccurredAt
	r.UpdatedAt = at
	m.reports[id] = r
	return true, nil
}

func (m *memoryRepo) Delete(ctx context.Context, id types.ID, status Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok || r.Status != status {
		return false, nil
	}
	delete(m.reports, id)
	delete(m.updates, id)
	return true, nil
}

func (m *memoryRepo) AppendUpdate(ctx context.Context, u *Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = strconv.Itoa(m.nextID)
	m.updates[u.ReportID] = append(m.updates[u.ReportID], *u)
	return nil
}

func (m *memoryRepo) ListUpdates(ctx context.Context, reportID types.ID) ([]Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Update{}, m.updates[reportID]...), nil
}

func (m *memoryRepo) HasOpenByStation(ctx context.Context, stationID types.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.StationID == nil || *r.StationID != stationID {
			continue
		}
		for _, s := range OpenStatuses {
			if r.Status == s {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeStations struct {
	nearest  *station.Station
	err      error
	byID     map[types.ID]station.Station
	district string
}

func (f *fakeStations) FindNearestStation(ctx context.Context, p types.Point, district string) (*station.Station, error) {
	f.district = district
	return f.nearest, f.err
}

func (f *fakeStations) Get(ctx context.Context, id types.ID) (*station.Station, error) {
	st, ok := f.byID[id]
	if !ok {
		return nil, station.ErrNotFound
	}
	return &st, nil
}

type fixedPlace location.Place

func (f fixedPlace) ResolveDistrict(ctx context.Context, p types.Point) location.Place {
	return location.Place(f)
}
