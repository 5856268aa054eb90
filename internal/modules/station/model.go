// README: Police station aggregate and repository contract.
package station

import (
	"context"
	"errors"
	"time"

	"kavach/internal/types"
)

var (
	ErrNotFound     = errors.New("station not found")
	ErrBadRequest   = errors.New("bad request")
	ErrStationInUse = errors.New("station has open reports")
)

type Station struct {
	ID        types.ID    `json:"id" firestore:"-"`
	Name      string      `json:"name" firestore:"name"`
	District  string      `json:"district" firestore:"district"`
	Address   string      `json:"address" firestore:"address"`
	Location  types.Point `json:"location" firestore:"location"`
	Phone     string      `json:"phone,omitempty" firestore:"phone"`
	Email     string      `json:"email,omitempty" firestore:"email"`
	IsActive  bool        `json:"isActive" firestore:"isActive"`
	CreatedAt time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt" firestore:"updatedAt"`
}

// Repository is implemented by PGStore, FirestoreStore and CachedRepository.
type Repository interface {
	// ListActive returns active stations; an empty district means all districts.
	ListActive(ctx context.Context, district string) ([]Station, error)
	List(ctx context.Context) ([]Station, error)
	Get(ctx context.Context, id types.ID) (*Station, error)
	Create(ctx context.Context, s *Station) error
	Update(ctx context.Context, s *Station) error
	Delete(ctx context.Context, id types.ID) error
	ListDistricts(ctx context.Context) ([]string, error)
}
