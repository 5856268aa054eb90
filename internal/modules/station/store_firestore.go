// README: Station store backed by Cloud Firestore.
package station

import (
	"context"
	"errors"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"kavach/internal/types"
)

const stationsCollection = "stations"

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) ListActive(ctx context.Context, district string) ([]Station, error) {
	q := s.client.Collection(stationsCollection).Where("isActive", "==", true)
	if district != "" {
		q = q.Where("district", "==", district)
	}
	out, err := collect(q.Documents(ctx))
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]Station, error) {
	return collect(s.client.Collection(stationsCollection).OrderBy("name", firestore.Asc).Documents(ctx))
}

func (s *FirestoreStore) Get(ctx context.Context, id types.ID) (*Station, error) {
	doc, err := s.client.Collection(stationsCollection).Doc(string(id)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var st Station
	if err := doc.DataTo(&st); err != nil {
		return nil, err
	}
	st.ID = types.ID(doc.Ref.ID)
	return &st, nil
}

func (s *FirestoreStore) Create(ctx context.Context, st *Station) error {
	_, err := s.client.Collection(stationsCollection).Doc(string(st.ID)).Create(ctx, st)
	return err
}

func (s *FirestoreStore) Update(ctx context.Context, st *Station) error {
	ref := s.client.Collection(stationsCollection).Doc(string(st.ID))
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "name", Value: st.Name},
		{Path: "district", Value: st.District},
		{Path: "address", Value: st.Address},
		{Path: "location", Value: st.Location},
		{Path: "phone", Value: st.Phone},
		{Path: "email", Value: st.Email},
		{Path: "isActive", Value: st.IsActive},
		{Path: "updatedAt", Value: st.UpdatedAt},
	})
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func (s *FirestoreStore) Delete(ctx context.Context, id types.ID) error {
	ref := s.client.Collection(stationsCollection).Doc(string(id))
	_, err := ref.Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func (s *FirestoreStore) ListDistricts(ctx context.Context) ([]string, error) {
	iter := s.client.Collection(stationsCollection).Select("district").Documents(ctx)
	defer iter.Stop()

	seen := map[string]struct{}{}
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		if d, ok := doc.Data()["district"].(string); ok && d != "" {
			seen[d] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out, nil
}

func collect(iter *firestore.DocumentIterator) ([]Station, error) {
	defer iter.Stop()

	out := []Station{}
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		var st Station
		if err := doc.DataTo(&st); err != nil {
			return nil, err
		}
		st.ID = types.ID(doc.Ref.ID)
		out = append(out, st)
	}
}
