// README: Report store backed by PostgreSQL.
package report

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kavach/internal/types"
)

const reportColumns = `id, title, description, crime_type, lat, lng, address, district,
	occurred_at, reporter_id, station_id, status, status_version,
	is_urgent, is_anonymous, priority, cell, created_at, updated_at`

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, r *Report) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		string(r.ID), r.Title, r.Description, r.CrimeType,
		r.Location.Lat, r.Location.Lng, r.Address, r.District,
		r.OccurredAt, string(r.ReporterID), toStringPtr(r.StationID),
		string(r.Status), r.StatusVersion,
		r.IsUrgent, r.IsAnonymous, string(r.Priority), r.Cell,
		r.CreatedAt, r.UpdatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Report, error) {
	row := s.db.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, string(id))
	r, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PGStore) List(ctx context.Context, f ListFilter) ([]Report, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.ReporterID != "" {
		add("reporter_id = ?", string(f.ReporterID))
	}
	if f.StationID != "" {
		add("station_id = ?", string(f.StationID))
	}
	if f.District != "" {
		add("district = ?", f.District)
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if f.CrimeType != "" {
		add("crime_type = ?", f.CrimeType)
	}
	if !f.Since.IsZero() {
		add("created_at >= ?", f.Since)
	}

	sql := `SELECT ` + reportColumns + ` FROM reports`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	sql += ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGStore) ListRecent(ctx context.Context, f RecentFilter) ([]Report, error) {
	return s.List(ctx, ListFilter{Since: f.Since, CrimeType: f.CrimeType, Limit: f.Limit})
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE reports
		SET status = $1,
		    status_version = status_version + 1,
		    updated_at = $2
		WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(to), at, string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) UpdateStation(ctx context.Context, id types.ID, stationID types.ID, at time.Time) error {
	tag, err := s.db.Exec(ctx, `UPDATE reports SET station_id = $1, updated_at = $2 WHERE id = $3`,
		string(stationID), at, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) UpdateDetails(ctx context.Context, id types.ID, status Status, d Details, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE reports
		SET crime_type = $1,
		    description = $2,
		    occurred_at = $3,
		    updated_at = $4
		WHERE id = $5 AND status = $6`,
		d.CrimeType, d.Description, d.OccurredAt, at, string(id), string(status),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Delete relies on ON DELETE CASCADE to drop the timeline.
func (s *PGStore) Delete(ctx context.Context, id types.ID, status Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM reports WHERE id = $1 AND status = $2`, string(id), string(status))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) AppendUpdate(ctx context.Context, u *Update) error {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO report_updates (
			report_id, kind, from_status, to_status, message, actor_type, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		string(u.ReportID), u.Kind, string(u.FromStatus), string(u.ToStatus),
		u.Message, u.ActorType, toStringPtr(u.ActorID), u.CreatedAt,
	).Scan(&id)
	if err != nil {
		return err
	}
	u.ID = strconv.FormatInt(id, 10)
	return nil
}

func (s *PGStore) ListUpdates(ctx context.Context, reportID types.ID) ([]Update, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, report_id, kind, from_status, to_status, message, actor_type, actor_id, created_at
		FROM report_updates
		WHERE report_id = $1
		ORDER BY created_at, id`, string(reportID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Update{}
	for rows.Next() {
		var (
			u       Update
			id      int64
			actorID *string
		)
		if err := rows.Scan(&id, &u.ReportID, &u.Kind, &u.FromStatus, &u.ToStatus, &u.Message, &u.ActorType, &actorID, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.ID = strconv.FormatInt(id, 10)
		u.ActorID = toIDPtr(actorID)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PGStore) HasOpenByStation(ctx context.Context, stationID types.ID) (bool, error) {
	open := make([]string, len(OpenStatuses))
	for i, st := range OpenStatuses {
		open[i] = string(st)
	}
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reports
			WHERE station_id = $1 AND status = ANY($2)
		)`, string(stationID), open,
	).Scan(&exists)
	return exists, err
}

func scanReport(row pgx.Row) (Report, error) {
	var (
		r         Report
		stationID *string
	)
	err := row.Scan(
		&r.ID, &r.Title, &r.Description, &r.CrimeType,
		&r.Location.Lat, &r.Location.Lng, &r.Address, &r.District,
		&r.OccurredAt, &r.ReporterID, &stationID, &r.Status, &r.StatusVersion,
		&r.IsUrgent, &r.IsAnonymous, &r.Priority, &r.Cell,
		&r.CreatedAt, &r.UpdatedAt,
	)
	r.StationID = toIDPtr(stationID)
	return r, err
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toIDPtr(v *string) *types.ID {
	if v == nil {
		return nil
	}
	id := types.ID(*v)
	return &id
}
