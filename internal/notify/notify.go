// README: Station notification events and fan-out.
package notify

import (
	"context"
	"errors"
	"time"

	"kavach/internal/types"
)

type EventType string

const (
	EventNewReport    EventType = "new_report"
	EventUrgentReport EventType = "urgent_report"
)

// Event is the payload delivered to a station's dashboard.
type Event struct {
	Type      EventType `json:"type"`
	StationID types.ID  `json:"stationId"`
	ReportID  types.ID  `json:"reportId"`
	CrimeType string    `json:"crimeType"`
	Timestamp time.Time `json:"timestamp"`
}

type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
