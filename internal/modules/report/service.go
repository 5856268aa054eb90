// README: Report service: creation with station assignment, status workflow and listings.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"kavach/internal/metrics"
	"kavach/internal/modules/location"
	"kavach/internal/modules/station"
	"kavach/internal/notify"
	"kavach/internal/triage"
	"kavach/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid status transition")
	ErrNotFound     = errors.New("report not found")
	ErrConflict     = errors.New("report status conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrNotEditable  = errors.New("report can no longer be changed")
)

const (
	defaultListLimit      = 100
	maxListLimit          = 500
	defaultGeocodeTimeout = 3 * time.Second
	defaultTriageTimeout  = 5 * time.Second
)

// StationDirectory is the part of station.Service the report flow needs.
type StationDirectory interface {
	FindNearestStation(ctx context.Context, p types.Point, district string) (*station.Station, error)
	Get(ctx context.Context, id types.ID) (*station.Station, error)
}

// DistrictResolver never fails; unresolvable points map to location.UnknownDistrict.
type DistrictResolver interface {
	ResolveDistrict(ctx context.Context, p types.Point) location.Place
}

type Options struct {
	Triage         triage.Classifier
	Notifier       notify.Notifier
	CellResolution int
	RepoTimeout    time.Duration
	// GeocodeTimeout and TriageTimeout bound the remote calls made during Create.
	GeocodeTimeout time.Duration
	TriageTimeout  time.Duration
	// TimeZone buckets stats by local hour; defaults to time.Local.
	TimeZone *time.Location
	Logger   *slog.Logger
	Now      func() time.Time
}

type Service struct {
	repo     Repository
	stations StationDirectory
	places   DistrictResolver
	triage   triage.Classifier
	notifier notify.Notifier
	cellRes  int
	timeout  time.Duration
	geocodeT time.Duration
	triageT  time.Duration
	tz       *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, stations StationDirectory, places DistrictResolver, opts Options) *Service {
	s := &Service{
		repo:     repo,
		stations: stations,
		places:   places,
		triage:   opts.Triage,
		notifier: opts.Notifier,
		cellRes:  opts.CellResolution,
		timeout:  opts.RepoTimeout,
		geocodeT: opts.GeocodeTimeout,
		triageT:  opts.TriageTimeout,
		tz:       opts.TimeZone,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if s.cellRes <= 0 {
		s.cellRes = 8
	}
	if s.geocodeT <= 0 {
		s.geocodeT = defaultGeocodeTimeout
	}
	if s.triageT <= 0 {
		s.triageT = defaultTriageTimeout
	}
	if s.tz == nil {
		s.tz = time.Local
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

type CreateCommand struct {
	ReporterID  types.ID
	Title       string
	Description string
	CrimeType   string
	Location    types.Point
	Address     string
	OccurredAt  time.Time
	IsAnonymous bool
	IsUrgent    bool
}

type CreateResult struct {
	Report  *Report
	Station *station.Station
}

type UpdateStatusCommand struct {
	ReportID types.ID
	To       Status
	Note     string
	// StationID scopes the change to one station's reports; empty means any.
	StationID types.ID
	ActorType string
	ActorID   types.ID
}

type ReassignCommand struct {
	ReportID  types.ID
	StationID types.ID
	ActorID   types.ID
}

// EditCommand changes the non-nil fields of the caller's own report.
type EditCommand struct {
	ReportID    types.ID
	ReporterID  types.ID
	CrimeType   *string
	Description *string
	OccurredAt  *time.Time
}

type NoteCommand struct {
	ReportID types.ID
	Note     string
	// StationID scopes the note to one station's reports; empty means any.
	StationID types.ID
	ActorType string
	ActorID   types.ID
}

// Create resolves the district, assigns the nearest active station and
// persists the report. A missing station is not an error.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*CreateResult, error) {
	cmd.Title = strings.TrimSpace(cmd.Title)
	cmd.CrimeType = strings.TrimSpace(cmd.CrimeType)
	if cmd.ReporterID == "" || cmd.Title == "" || cmd.CrimeType == "" {
		return nil, ErrBadRequest
	}
	if err := location.Validate(cmd.Location); err != nil {
		return nil, err
	}

	place := location.Place{District: location.UnknownDistrict}
	if s.places != nil {
		gctx, cancel := context.WithTimeout(ctx, s.geocodeT)
		place = s.places.ResolveDistrict(gctx, cmd.Location)
		cancel()
	}

	rctx, cancel := s.repoCtx(ctx)
	assigned, err := s.stations.FindNearestStation(rctx, cmd.Location, place.District)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("assign station: %w", err)
	}

	now := s.now()
	r := &Report{
		ID:          types.ID(uuid.NewString()),
		Title:       cmd.Title,
		Description: strings.TrimSpace(cmd.Description),
		CrimeType:   cmd.CrimeType,
		Location:    cmd.Location,
		Address:     strings.TrimSpace(cmd.Address),
		District:    place.District,
		OccurredAt:  cmd.OccurredAt,
		ReporterID:  cmd.ReporterID,
		Status:      StatusPending,
		IsUrgent:    cmd.IsUrgent,
		IsAnonymous: cmd.IsAnonymous,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if r.OccurredAt.IsZero() {
		r.OccurredAt = now
	}
	if r.Address == "" && place.District != location.UnknownDistrict {
		r.Address = place.FormattedAddress
	}
	if assigned != nil {
		id := assigned.ID
		r.StationID = &id
	} else {
		s.logger.Warn("no active station for report",
			slog.String("report_id", string(r.ID)),
			slog.String("district", place.District),
		)
	}
	s.applyTriage(ctx, r)
	if cell, err := location.CellOf(r.Location, s.cellRes); err == nil {
		r.Cell = cell
	} else {
		s.logger.Warn("h3 cell failed", slog.Any("error", err))
	}

	rctx, cancel = s.repoCtx(ctx)
	defer cancel()
	if err := s.repo.Create(rctx, r); err != nil {
		return nil, err
	}
	metrics.ReportsCreatedTotal.Inc()
	s.appendUpdate(rctx, &Update{
		ReportID:  r.ID,
		Kind:      KindStatus,
		ToStatus:  StatusPending,
		Message:   submittedMessage,
		ActorType: ActorSystem,
		CreatedAt: now,
	})

	if r.StationID != nil {
		s.notify(ctx, notify.EventNewReport, r)
		if r.IsUrgent {
			s.notify(ctx, notify.EventUrgentReport, r)
		}
	}
	s.logger.Info("report created",
		slog.String("report_id", string(r.ID)),
		slog.String("district", r.District),
		slog.Bool("assigned", r.StationID != nil),
		slog.Bool("urgent", r.IsUrgent),
	)
	return &CreateResult{Report: r, Station: assigned}, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Report, error) {
	if id == "" {
		return nil, ErrBadRequest
	}
	ctx, cancel := s.repoCtx(ctx)
	defer cancel()
	return s.repo.Get(ctx, id)
}

// GetWithUpdates returns the report and its timeline, oldest update first.
func (s *Service) GetWithUpdates(ctx context.Context, id types.ID) (*Report, []Update, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := s.repoCtx(ctx)
	defer cancel()
	updates, err := s.repo.ListUpdates(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return r, updates, nil
}

func (s *Service) ListByReporter(ctx context.Context, reporterID types.ID, status Status, limit int) ([]Report, error) {
	if reporterID == "" {
		return nil, ErrBadRequest
	}
	return s.List(ctx, ListFilter{ReporterID: reporterID, Status: status, Limit: limit})
}

func (s *Service) ListByStation(ctx context.Context, stationID types.ID, status Status, limit int) ([]Report, error) {
	if stationID == "" {
		return nil, ErrBadRequest
	}
	return s.List(ctx, ListFilter{StationID: stationID, Status: status, Limit: limit})
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Report, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrBadRequest
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	ctx, cancel := s.repoCtx(ctx)
	defer cancel()
	return s.repo.List(ctx, f)
}

// UpdateStatus moves a report along the workflow and appends a timeline entry.
func (s *Service) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) (*Report, *Update, error) {
	if !cmd.To.Valid() {
		return nil, nil, ErrBadRequest
	}
	r, err := s.Get(ctx, cmd.ReportID)
	if err != nil {
		return nil, nil, err
	}
	if cmd.StationID != "" && (r.StationID == nil || *r.StationID != cmd.StationID) {
		return nil, nil, ErrNotFound
	}
	if !CanTransition(r.Status, cmd.To) {
		return nil, nil, ErrInvalidState
	}

	now := s.now()
	rctx, cancel := s.repoCtx(ctx)
	defer cancel()
	ok, err := s.repo.UpdateStatus(rctx, r.ID, r.Status, cmd.To, r.StatusVersion, now)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrConflict
	}

	u := &Update{
		ReportID:   r.ID,
		Kind:       KindStatus,
		FromStatus: r.Status,
		ToStatus:   cmd.To,
		Message:    statusMessage(cmd.To, cmd.Note),
		ActorType:  cmd.ActorType,
		CreatedAt:  now,
	}
	if cmd.ActorID != "" {
		actor := cmd.ActorID
		u.ActorID = &actor
	}
	s.appendUpdate(rctx, u)

	r.Status = cmd.To
	r.StatusVersion++
	r.UpdatedAt = now
	return r, u, nil
}

// Reassign points a report at a different station. It is an explicit
// administrative action; creation-time assignment is never re-run.
func (s *Service) Reassign(ctx context.Context, cmd ReassignCommand) (*Report, error) {
	if cmd.StationID == "" {
		return nil, ErrBadRequest
	}
	r, err := s.Get(ctx, cmd.ReportID)
	if err != nil {
		return nil, err
	}
	st, err := s.stations.Get(ctx, cmd.StationID)
	if errors.Is(err, station.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown station %s", ErrBadRequest, cmd.StationID)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	rctx, cancel := s.repoCtx(ctx)
	defer cancel()
	if err := s.repo.UpdateStation(rctx, r.ID, st.ID, now); err != nil {
		return nil, err
	}
	actor := cmd.ActorID
	s.appendUpdate(rctx, &Update{
		ReportID:   r.ID,
		Kind:       KindReassign,
		FromStatus: r.Status,
		ToStatus:   r.Status,
		Message:    fmt.Sprintf("Report reassigned to %s.", st.Name),
		ActorType:  ActorSuperadmin,
		ActorID:    &actor,
		CreatedAt:  now,
	})

	id := st.ID
	r.StationID = &id
	r.UpdatedAt = now
	s.notify(ctx, notify.EventNewReport, r)
	return r, nil
}

// ownReport loads a report the reporter may still change. Reports of other
// citizens read as not found.
func (s *Service) ownReport(ctx context.Context, id, reporterID types.ID) (*Report, error) {
	if reporterID == "" {
		return nil, ErrBadRequest
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.ReporterID != reporterID {
		return nil, ErrNotFound
	}
	if r.Status != EditableStatus {
		return nil, fmt.Errorf("%w: status is %s", ErrNotEditable, r.Status)
	}
	return r, nil
}

// Edit lets the reporter correct a report that no station has picked up yet.
// Location is fixed because it drove the station assignment.
func (s *Service) Edit(ctx context.Context, cmd EditCommand) (*Report, error) {
	r, err := s.ownReport(ctx, cmd.ReportID, cmd.ReporterID)
	if err != nil {
		return nil, err
	}
	d := Details{CrimeType: r.CrimeType, Description: r.Description, OccurredAt: r.OccurredAt}
	if cmd.CrimeType != nil {
		d.CrimeType = strings.TrimSpace(*cmd.CrimeType)
		if d.CrimeType == "" {
			return nil, ErrBadRequest
		}
	}
	if cmd.Description != nil {
		d.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.OccurredAt != nil && !cmd.OccurredAt.IsZero() {
		d.OccurredAt = *cmd.OccurredAt
	}

	now := s.now()
	rctx, cancel := s.repoCtx(ctx)
	defer cancel()
	ok, err := s.repo.UpdateDetails(rctx, r.ID, EditableStatus, d, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	actor := cmd.ReporterID
	s.appendUpdate(rctx, &Update{
		ReportID:   r.ID,
		Kind:       KindEdit,
		FromStatus: r.Status,
		ToStatus:   r.Status,
		Message:    editedMessage,
		ActorType:  ActorReporter,
		ActorID:    &actor,
		CreatedAt:  now,
	})

	r.CrimeType = d.CrimeType
	r.Description = d.Description
	r.OccurredAt = d.OccurredAt
	r.UpdatedAt = now
	return r, nil
}

// Withdraw deletes the reporter's own report while it is still pending.
func (s *Service) Withdraw(ctx context.Context, id, reporterID types.ID) error {
	r, err := s.ownReport(ctx, id, reporterID)
	if err != nil {
		return err
	}
	rctx, cancel := s.repoCtx(ctx)
	defer cancel()
	ok, err := s.repo.Delete(rctx, r.ID, EditableStatus)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.logger.Info("report withdrawn", slog.String("report_id", string(r.ID)))
	return nil
}

// AddNote appends a case note to the report timeline without changing status.
func (s *Service) AddNote(ctx context.Context, cmd NoteCommand) (*Update, error) {
	note := strings.TrimSpace(cmd.Note)
	if note == "" {
		return nil, ErrBadRequest
	}
	r, err := s.Get(ctx, cmd.ReportID)
	if err != nil {
		return nil, err
	}
	if cmd.StationID != "" && (r.StationID == nil || *r.StationID != cmd.StationID) {
		return nil, ErrNotFound
	}

	u := &Update{
		ReportID:   r.ID,
		Kind:       KindNote,
		FromStatus: r.Status,
		ToStatus:   r.Status,
		Message:    note,
		ActorType:  cmd.ActorType,
		CreatedAt:  s.now(),
	}
	if cmd.ActorID != "" {
		actor := cmd.ActorID
		u.ActorID = &actor
	}
	rctx, cancel := s.repoCtx(ctx)
	defer cancel()
	if err := s.repo.AppendUpdate(rctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// HasOpenReports implements station.OpenReportChecker.
func (s *Service) HasOpenReports(ctx context.Context, stationID types.ID) (bool, error) {
	ctx, cancel := s.repoCtx(ctx)
	defer cancel()
	return s.repo.HasOpenByStation(ctx, stationID)
}

func (s *Service) applyTriage(ctx context.Context, r *Report) {
	if s.triage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.triageT)
	defer cancel()
	a, err := s.triage.Classify(ctx, triage.Input{
		CrimeType:   r.CrimeType,
		Title:       r.Title,
		Description: r.Description,
	})
	if err != nil {
		s.logger.Warn("triage failed", slog.String("report_id", string(r.ID)), slog.Any("error", err))
		return
	}
	r.Priority = Priority(a.Priority)
	if r.Priority == PriorityHigh {
		r.IsUrgent = true
	}
}

func (s *Service) appendUpdate(ctx context.Context, u *Update) {
	if err := s.repo.AppendUpdate(ctx, u); err != nil {
		s.logger.Error("append report update failed",
			slog.String("report_id", string(u.ReportID)),
			slog.Any("error", err),
		)
	}
}

func (s *Service) notify(ctx context.Context, typ notify.EventType, r *Report) {
	if s.notifier == nil || r.StationID == nil {
		return
	}
	err := s.notifier.Notify(ctx, notify.Event{
		Type:      typ,
		StationID: *r.StationID,
		ReportID:  r.ID,
		CrimeType: r.CrimeType,
		Timestamp: s.now(),
	})
	if err != nil {
		s.logger.Error("station notification failed",
			slog.String("type", string(typ)),
			slog.String("report_id", string(r.ID)),
			slog.Any("error", err),
		)
	}
}

func (s *Service) repoCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func statusMessage(to Status, note string) string {
	msg, ok := statusMessages[to]
	if !ok {
		msg = fmt.Sprintf("Status updated to %s.", to)
	}
	if note = strings.TrimSpace(note); note != "" {
		msg += " Note: " + note
	}
	return msg
}
