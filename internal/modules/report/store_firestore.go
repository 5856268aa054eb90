// README: Report store backed by Cloud Firestore; updates live in a subcollection.
package report

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"kavach/internal/types"
)

const (
	reportsCollection = "reports"
	updatesCollection = "updates"
)

var errVersionMismatch = errors.New("report status changed concurrently")

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) doc(id types.ID) *firestore.DocumentRef {
	return s.client.Collection(reportsCollection).Doc(string(id))
}

func (s *FirestoreStore) Create(ctx context.Context, r *Report) error {
	_, err := s.doc(r.ID).Create(ctx, r)
	return err
}

func (s *FirestoreStore) Get(ctx context.Context, id types.ID) (*Report, error) {
	snap, err := s.doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var r Report
	if err := snap.DataTo(&r); err != nil {
		return nil, err
	}
	r.ID = types.ID(snap.Ref.ID)
	return &r, nil
}

func (s *FirestoreStore) List(ctx context.Context, f ListFilter) ([]Report, error) {
	q := s.client.Collection(reportsCollection).Query
	if f.ReporterID != "" {
		q = q.Where("reporterId", "==", string(f.ReporterID))
	}
	if f.StationID != "" {
		q = q.Where("stationId", "==", string(f.StationID))
	}
	if f.District != "" {
		q = q.Where("district", "==", f.District)
	}
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	if f.CrimeType != "" {
		q = q.Where("crimeType", "==", f.CrimeType)
	}
	if !f.Since.IsZero() {
		q = q.Where("createdAt", ">=", f.Since)
	}
	q = q.OrderBy("createdAt", firestore.Desc)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []Report{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		var r Report
		if err := snap.DataTo(&r); err != nil {
			return nil, err
		}
		r.ID = types.ID(snap.Ref.ID)
		out = append(out, r)
	}
}

func (s *FirestoreStore) ListRecent(ctx context.Context, f RecentFilter) ([]Report, error) {
	return s.List(ctx, ListFilter{Since: f.Since, CrimeType: f.CrimeType, Limit: f.Limit})
}

// UpdateStatus runs a transaction so the status/version check and the write are atomic.
func (s *FirestoreStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, at time.Time) (bool, error) {
	ref := s.doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var cur Report
		if err := snap.DataTo(&cur); err != nil {
			return err
		}
		if cur.Status != from || cur.StatusVersion != version {
			return errVersionMismatch
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(to)},
			{Path: "statusVersion", Value: version + 1},
			{Path: "updatedAt", Value: at},
		})
	})
	if errors.Is(err, errVersionMismatch) {
		return false, nil
	}
	if status.Code(err) == codes.NotFound {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *FirestoreStore) UpdateStation(ctx context.Context, id types.ID, stationID types.ID, at time.Time) error {
	_, err := s.doc(id).Update(ctx, []firestore.Update{
		{Path: "stationId", Value: string(stationID)},
		{Path: "updatedAt", Value: at},
	})
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

var errStatusChanged = errors.New("report status changed")

func (s *FirestoreStore) UpdateDetails(ctx context.Context, id types.ID, st Status, d Details, at time.Time) (bool, error) {
	ref := s.doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var cur Report
		if err := snap.DataTo(&cur); err != nil {
			return err
		}
		if cur.Status != st {
			return errStatusChanged
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "crimeType", Value: d.CrimeType},
			{Path: "description", Value: d.Description},
			{Path: "timestamp", Value: d.OccurredAt},
			{Path: "updatedAt", Value: at},
		})
	})
	return txOutcome(err)
}

// Delete removes the report and its updates subcollection in one transaction.
func (s *FirestoreStore) Delete(ctx context.Context, id types.ID, st Status) (bool, error) {
	ref := s.doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var cur Report
		if err := snap.DataTo(&cur); err != nil {
			return err
		}
		if cur.Status != st {
			return errStatusChanged
		}
		updates, err := tx.Documents(ref.Collection(updatesCollection)).GetAll()
		if err != nil {
			return err
		}
		for _, u := range updates {
			if err := tx.Delete(u.Ref); err != nil {
				return err
			}
		}
		return tx.Delete(ref)
	})
	return txOutcome(err)
}

func txOutcome(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStatusChanged):
		return false, nil
	case status.Code(err) == codes.NotFound:
		return false, ErrNotFound
	}
	return false, err
}

func (s *FirestoreStore) AppendUpdate(ctx context.Context, u *Update) error {
	ref := s.doc(u.ReportID).Collection(updatesCollection).NewDoc()
	if _, err := ref.Create(ctx, u); err != nil {
		return err
	}
	u.ID = ref.ID
	return nil
}

func (s *FirestoreStore) ListUpdates(ctx context.Context, reportID types.ID) ([]Update, error) {
	iter := s.doc(reportID).Collection(updatesCollection).OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	out := []Update{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		var u Update
		if err := snap.DataTo(&u); err != nil {
			return nil, err
		}
		u.ID = snap.Ref.ID
		out = append(out, u)
	}
}

func (s *FirestoreStore) HasOpenByStation(ctx context.Context, stationID types.ID) (bool, error) {
	open := make([]string, len(OpenStatuses))
	for i, st := range OpenStatuses {
		open[i] = string(st)
	}
	iter := s.client.Collection(reportsCollection).
		Where("stationId", "==", string(stationID)).
		Where("status", "in", open).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
