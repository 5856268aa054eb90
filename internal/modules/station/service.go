// README: Station service: nearest-station assignment and superadmin CRUD.
package station

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"kavach/internal/metrics"
	"kavach/internal/modules/location"
	"kavach/internal/types"
)

// OpenReportChecker reports whether any unresolved report references a station.
type OpenReportChecker interface {
	HasOpenReports(ctx context.Context, stationID types.ID) (bool, error)
}

type Service struct {
	repo    Repository
	finder  Finder
	reports OpenReportChecker
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, finder: LinearScan{}, logger: logger, now: time.Now}
}

// WithFinder swaps the selection strategy.
func (s *Service) WithFinder(f Finder) *Service {
	s.finder = f
	return s
}

// SetReportChecker installs the delete guard. It is set after construction
// because the report service depends on this one.
func (s *Service) SetReportChecker(c OpenReportChecker) {
	s.reports = c
}

type CreateCommand struct {
	Name     string
	District string
	Address  string
	Location types.Point
	Phone    string
	Email    string
	IsActive *bool
}

type UpdateCommand struct {
	Name     *string
	District *string
	Address  *string
	Location *types.Point
	Phone    *string
	Email    *string
	IsActive *bool
}

// FindNearestStation prefers active stations in district and falls back to
// every active station. It returns (nil, nil) when no station is active.
func (s *Service) FindNearestStation(ctx context.Context, p types.Point, district string) (*Station, error) {
	candidates, err := s.repo.ListActive(ctx, district)
	if err != nil {
		return nil, fmt.Errorf("list stations in %q: %w", district, err)
	}
	outcome := "district"
	if district == "" {
		outcome = "fallback"
	}
	if len(candidates) == 0 && district != "" {
		candidates, err = s.repo.ListActive(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("list stations: %w", err)
		}
		outcome = "fallback"
	}
	metrics.StationCandidates.Observe(float64(len(candidates)))

	best, dist, ok := s.finder.Nearest(p, candidates)
	if !ok {
		metrics.StationAssignmentsTotal.WithLabelValues("unassigned").Inc()
		return nil, nil
	}
	metrics.StationAssignmentsTotal.WithLabelValues(outcome).Inc()
	s.logger.Debug("nearest station",
		slog.String("station_id", string(best.ID)),
		slog.String("district", district),
		slog.String("outcome", outcome),
		slog.Float64("distance_km", dist),
	)
	return &best, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Station, error) {
	if id == "" {
		return nil, ErrBadRequest
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Station, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListDistricts(ctx context.Context) ([]string, error) {
	return s.repo.ListDistricts(ctx)
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Station, error) {
	st := &Station{
		ID:       types.ID(uuid.NewString()),
		Name:     strings.TrimSpace(cmd.Name),
		District: strings.TrimSpace(cmd.District),
		Address:  strings.TrimSpace(cmd.Address),
		Location: cmd.Location,
		Phone:    cmd.Phone,
		Email:    cmd.Email,
		IsActive: true,
	}
	if cmd.IsActive != nil {
		st.IsActive = *cmd.IsActive
	}
	if err := validate(st); err != nil {
		return nil, err
	}
	now := s.now()
	st.CreatedAt, st.UpdatedAt = now, now
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	s.logger.Info("station created", slog.String("station_id", string(st.ID)), slog.String("district", st.District))
	return st, nil
}

func (s *Service) Update(ctx context.Context, id types.ID, cmd UpdateCommand) (*Station, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.Name != nil {
		st.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.District != nil {
		st.District = strings.TrimSpace(*cmd.District)
	}
	if cmd.Address != nil {
		st.Address = strings.TrimSpace(*cmd.Address)
	}
	if cmd.Location != nil {
		st.Location = *cmd.Location
	}
	if cmd.Phone != nil {
		st.Phone = *cmd.Phone
	}
	if cmd.Email != nil {
		st.Email = *cmd.Email
	}
	if cmd.IsActive != nil {
		st.IsActive = *cmd.IsActive
	}
	if err := validate(st); err != nil {
		return nil, err
	}
	st.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Delete refuses while pending, investigating or resolved reports reference the station.
func (s *Service) Delete(ctx context.Context, id types.ID) error {
	if id == "" {
		return ErrBadRequest
	}
	if s.reports != nil {
		open, err := s.reports.HasOpenReports(ctx, id)
		if err != nil {
			return fmt.Errorf("check open reports: %w", err)
		}
		if open {
			return ErrStationInUse
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("station deleted", slog.String("station_id", string(id)))
	return nil
}

func validate(st *Station) error {
	if st.Name == "" || st.District == "" {
		return ErrBadRequest
	}
	if err := location.Validate(st.Location); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
