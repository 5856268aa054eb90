// README: Station store backed by PostgreSQL.
package station

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kavach/internal/types"
)

const stationColumns = `id, name, district, address, lat, lng, phone, email, is_active, created_at, updated_at`

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) ListActive(ctx context.Context, district string) ([]Station, error) {
	if district == "" {
		return s.query(ctx, `SELECT `+stationColumns+` FROM stations WHERE is_active ORDER BY id`)
	}
	return s.query(ctx, `SELECT `+stationColumns+` FROM stations WHERE is_active AND district = $1 ORDER BY id`, district)
}

func (s *PGStore) List(ctx context.Context) ([]Station, error) {
	return s.query(ctx, `SELECT `+stationColumns+` FROM stations ORDER BY name, id`)
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Station, error) {
	row := s.db.QueryRow(ctx, `SELECT `+stationColumns+` FROM stations WHERE id = $1`, string(id))
	st, err := scanStation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *PGStore) Create(ctx context.Context, st *Station) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO stations (`+stationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		string(st.ID), st.Name, st.District, st.Address,
		st.Location.Lat, st.Location.Lng,
		st.Phone, st.Email, st.IsActive,
		st.CreatedAt, st.UpdatedAt,
	)
	return err
}

func (s *PGStore) Update(ctx context.Context, st *Station) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE stations
		SET name = $2, district = $3, address = $4, lat = $5, lng = $6,
		    phone = $7, email = $8, is_active = $9, updated_at = $10
		WHERE id = $1`,
		string(st.ID), st.Name, st.District, st.Address,
		st.Location.Lat, st.Location.Lng,
		st.Phone, st.Email, st.IsActive, st.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM stations WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) ListDistricts(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT district FROM stations ORDER BY district`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *PGStore) query(ctx context.Context, sql string, args ...any) ([]Station, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Station{}
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func scanStation(row pgx.Row) (Station, error) {
	var st Station
	err := row.Scan(
		&st.ID, &st.Name, &st.District, &st.Address,
		&st.Location.Lat, &st.Location.Lng,
		&st.Phone, &st.Email, &st.IsActive,
		&st.CreatedAt, &st.UpdatedAt,
	)
	return st, err
}
