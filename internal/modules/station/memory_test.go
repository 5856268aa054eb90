package station

import (
	"context"
	"sort"
	"sync"

	"kavach/internal/types"
)

// memoryRepo is an in-memory Repository used by the package tests.
type memoryRepo struct {
	mu       sync.Mutex
	stations map[types.ID]Station
	calls    []string
	err      error
}

func newMemoryRepo(stations ...Station) *memoryRepo {
	r := &memoryRepo{stations: map[types.ID]Station{}}
	for _, st := range stations {
		r.stations[st.ID] = st
	}
	return r
}

func (r *memoryRepo) ListActive(ctx context.Context, district string) ([]Station, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "ListActive:"+district)
	if r.err != nil {
		return nil, r.err
	}
	out := []Station{}
	for _, st := range r.stations {
		if st.IsActive && (district == "" || st.District == district) {
			out = append(out, st)
		}
	}
	// map order is random; keep it that way for callers that must not depend on it
	return out, nil
}

func (r *memoryRepo) List(ctx context.Context) ([]Station, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Station, 0, len(r.stations))
	for _, st := range r.stations {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, r.err
}

func (r *memoryRepo) Get(ctx context.Context, id types.ID) (*Station, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.stations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &st, nil
}

func (r *memoryRepo) Create(ctx context.Context, st *Station) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stations[st.ID] = *st
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, st *Station) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stations[st.ID]; !ok {
		return ErrNotFound
	}
	r.stations[st.ID] = *st
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id types.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stations[id]; !ok {
		return ErrNotFound
	}
	delete(r.stations, id)
	return nil
}

func (r *memoryRepo) ListDistricts(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, st := range r.stations {
		if !seen[st.District] {
			seen[st.District] = true
			out = append(out, st.District)
		}
	}
	sort.Strings(out)
	return out, nil
}
