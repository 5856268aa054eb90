// README: Firebase Cloud Messaging push to station topics.
package notify

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"

	"kavach/internal/metrics"
	"kavach/internal/types"
)

// MessageSender is satisfied by *messaging.Client.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier pushes to the topic "station-<id>" that admin devices subscribe to.
type FCMNotifier struct {
	client MessageSender
}

func NewFCMNotifier(client MessageSender) *FCMNotifier {
	return &FCMNotifier{client: client}
}

func StationTopic(id types.ID) string {
	return "station-" + string(id)
}

func (f *FCMNotifier) Notify(ctx context.Context, e Event) error {
	title := "New report"
	if e.Type == EventUrgentReport {
		title = "Urgent report"
	}
	msg := &messaging.Message{
		Topic: StationTopic(e.StationID),
		Notification: &messaging.Notification{
			Title: title,
			Body:  e.CrimeType,
		},
		Data: map[string]string{
			"type":      string(e.Type),
			"stationId": string(e.StationID),
			"reportId":  string(e.ReportID),
			"crimeType": e.CrimeType,
		},
	}
	if e.Type == EventUrgentReport {
		msg.Android = &messaging.AndroidConfig{Priority: "high"}
	}
	if _, err := f.client.Send(ctx, msg); err != nil {
		metrics.NotificationsTotal.WithLabelValues("fcm", "error").Inc()
		return fmt.Errorf("fcm send %s: %w", msg.Topic, err)
	}
	metrics.NotificationsTotal.WithLabelValues("fcm", "ok").Inc()
	return nil
}
