// README: Shared fixtures for handler tests: in-memory repositories and a token-keyed verifier.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"kavach/internal/config"
	httptransport "kavach/internal/http"
	"kavach/internal/infra"
	"kavach/internal/modules/location"
	"kavach/internal/modules/report"
	"kavach/internal/modules/station"
	"kavach/internal/types"
)

var fixedNow = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

var navrang = station.Station{
	ID:       "st-navrang",
	Name:     "Navrangpura Police Station",
	District: "Ahmedabad",
	Location: types.Point{Lat: 23.0365, Lng: 72.5611},
	IsActive: true,
}

var satellite = station.Station{
	ID:       "st-satellite",
	Name:     "Satellite Police Station",
	District: "Ahmedabad",
	Location: types.Point{Lat: 23.0300, Lng: 72.5170},
	IsActive: true,
}

// tokenVerifier maps bearer tokens to fixed identities.
type tokenVerifier map[string]*infra.FirebaseToken

func (v tokenVerifier) VerifyIDToken(_ context.Context, raw string) (*infra.FirebaseToken, error) {
	tok, ok := v[raw]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return tok, nil
}

var verifier = tokenVerifier{
	"citizen":  {UID: "citizen-1", Claims: map[string]interface{}{}},
	"citizen2": {UID: "citizen-2", Claims: map[string]interface{}{}},
	"admin":    {UID: "officer-1", Claims: map[string]interface{}{"role": "admin", "stationId": "st-navrang"}},
	"admin2":   {UID: "officer-2", Claims: map[string]interface{}{"role": "admin", "stationId": "st-satellite"}},
	"orphan":   {UID: "officer-3", Claims: map[string]interface{}{"role": "admin"}},
	"super":    {UID: "root-1", Claims: map[string]interface{}{"role": "superadmin"}},
}

type fixedPlace location.Place

func (f fixedPlace) ResolveDistrict(context.Context, types.Point) location.Place {
	return location.Place(f)
}

type testEnv struct {
	handler  http.Handler
	reports  *memReports
	stations *memStations
}

func newTestEnv(t *testing.T, stations ...station.Station) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stRepo := newMemStations(stations...)
	rpRepo := newMemReports()
	stationSvc := station.NewService(stRepo, logger)
	reportSvc := report.NewService(rpRepo, stationSvc, fixedPlace{District: "Ahmedabad", FormattedAddress: "Ahmedabad, Gujarat"}, report.Options{
		Logger:   logger,
		Now:      func() time.Time { return fixedNow },
		TimeZone: time.UTC,
	})
	stationSvc.SetReportChecker(reportSvc)

	srv := httptransport.NewServer(httptransport.ServerDeps{
		Reports:  reportSvc,
		Stations: stationSvc,
		Verifier: verifier,
		Logger:   logger,
		Nearby:   config.NearbyConfig{DefaultRadiusKm: 10, DefaultLimit: 10, MaxRadiusKm: 100},
	})
	h, err := srv.Routes()
	require.NoError(t, err)
	return &testEnv{handler: h, reports: rpRepo, stations: stRepo}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// seedReport stores a report directly, bypassing creation.
func (e *testEnv) seedReport(r report.Report) {
	if r.Status == "" {
		r.Status = report.StatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = fixedNow.Add(-time.Hour)
	}
	e.reports.mu.Lock()
	e.reports.reports[r.ID] = r
	e.reports.mu.Unlock()
}

func stationPtr(id types.ID) *types.ID { return &id }

type memStations struct {
	mu       sync.Mutex
	stations map[types.ID]station.Station
}

func newMemStations(stations ...station.Station) *memStations {
	m := &memStations{stations: map[types.ID]station.Station{}}
	for _, s := range stations {
		m.stations[s.ID] = s
	}
	return m
}

func (m *memStations) sorted(keep func(station.Station) bool) []station.Station {
	out := []station.Station{}
	for _, s := range m.stations {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStations) ListActive(_ context.Context, district string) ([]station.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(s station.Station) bool {
		return s.IsActive && (district == "" || s.District == district)
	}), nil
}

func (m *memStations) List(context.Context) ([]station.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(station.Station) bool { return true }), nil
}

func (m *memStations) Get(_ context.Context, id types.ID) (*station.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stations[id]
	if !ok {
		return nil, station.ErrNotFound
	}
	return &s, nil
}

func (m *memStations) Create(_ context.Context, s *station.Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations[s.ID] = *s
	return nil
}

func (m *memStations) Update(_ context.Context, s *station.Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stations[s.ID]; !ok {
		return station.ErrNotFound
	}
	m.stations[s.ID] = *s
	return nil
}

func (m *memStations) Delete(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stations[id]; !ok {
		return station.ErrNotFound
	}
	delete(m.stations, id)
	return nil
}

func (m *memStations) ListDistricts(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, s := range m.stations {
		if !seen[s.District] {
			seen[s.District] = true
			out = append(out, s.District)
		}
	}
	sort.Strings(out)
	return out, nil
}

type memReports struct {
	mu      sync.Mutex
	reports map[types.ID]report.Report
	updates map[types.ID][]report.Update
	seq     int
}

func newMemReports() *memReports {
	return &memReports{reports: map[types.ID]report.Report{}, updates: map[types.ID][]report.Update{}}
}

func (m *memReports) Create(_ context.Context, r *report.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[r.ID] = *r
	return nil
}

func (m *memReports) Get(_ context.Context, id types.ID) (*report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, report.ErrNotFound
	}
	return &r, nil
}

func (m *memReports) List(_ context.Context, f report.ListFilter) ([]report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []report.Report{}
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

func (m *memReports) ListRecent(ctx context.Context, f report.RecentFilter) ([]report.Report, error) {
	return m.List(ctx, report.ListFilter{Since: f.Since, CrimeType: f.CrimeType, Limit: f.Limit})
}

func (m *memReports) UpdateStatus(_ context.Context, id types.ID, from, to report.Status, version int, at time.Time) (bool, error) {
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

func (m *memReports) UpdateStation(_ context.Context, id, stationID types.ID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return report.ErrNotFound
	}
	r.StationID = &stationID
	r.UpdatedAt = at
	m.reports[id] = r
	return nil
}

func (m *memReports) UpdateDetails(_ context.Context, id types.ID, status report.Status, d report.Details, at time.Time) (bool, error) {
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

func (m *memReports) Delete(_ context.Context, id types.ID, status report.Status) (bool, error) {
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

func (m *memReports) AppendUpdate(_ context.Context, u *report.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	u.ID = strconv.Itoa(m.seq)
	m.updates[u.ReportID] = append(m.updates[u.ReportID], *u)
	return nil
}

func (m *memReports) ListUpdates(_ context.Context, id types.ID) ([]report.Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]report.Update{}, m.updates[id]...), nil
}

func (m *memReports) HasOpenByStation(_ context.Context, stationID types.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.StationID == nil || *r.StationID != stationID {
			continue
		}
		for _, s := range report.OpenStatuses {
			if r.Status == s {
				return true, nil
			}
		}
	}
	return false, nil
}
