// README: Worker that drains the webhook queue and POSTs events to the socket server.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"kavach/internal/metrics"
)

// Dequeuer is satisfied by WebhookQueue.
type Dequeuer interface {
	BRPop(ctx context.Context, timeout time.Duration) (Event, error)
}

type WebhookSender struct {
	logger     *slog.Logger
	url        string
	secret     string
	queue      Dequeuer
	http       *http.Client
	maxRetries int
	backoff    time.Duration
	popTimeout time.Duration
}

func NewWebhookSender(logger *slog.Logger, url, secret string, q Dequeuer) *WebhookSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookSender{
		logger:     logger,
		url:        url,
		secret:     secret,
		queue:      q,
		http:       &http.Client{Timeout: 5 * time.Second},
		maxRetries: 3,
		backoff:    time.Second,
		popTimeout: 5 * time.Second,
	}
}

func (s *WebhookSender) Run(ctx context.Context) {
	s.logger.Info("webhook sender started", slog.String("url", s.url))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("webhook sender stopped", slog.String("reason", ctx.Err().Error()))
			return
		default:
		}

		e, err := s.queue.BRPop(ctx, s.popTimeout)
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) || ctx.Err() != nil {
				continue
			}
			s.logger.Error("webhook dequeue failed", slog.Any("error", err))
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		s.Send(ctx, e)
	}
}

// Send POSTs one event, retrying with linear backoff. It reports whether delivery succeeded.
func (s *WebhookSender) Send(ctx context.Context, e Event) bool {
	body, err := json.Marshal(e)
	if err != nil {
		s.logger.Error("marshal webhook payload failed", slog.Any("error", err))
		return false
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return false
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			s.logger.Error("create webhook request failed", slog.Any("error", err))
			return false
		}
		req.Header.Set("Content-Type", "application/json")
		if s.secret != "" {
			req.Header.Set("Authorization", "Bearer "+s.secret)
		}

		resp, err := s.http.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_ = resp.Body.Close()
			metrics.NotificationsTotal.WithLabelValues("webhook", "ok").Inc()
			return true
		}
		var reason string
		if err != nil {
			reason = err.Error()
		} else {
			reason = resp.Status
			_ = resp.Body.Close()
		}
		s.logger.Warn("webhook failed",
			slog.Int("attempt", attempt),
			slog.String("type", string(e.Type)),
			slog.String("report_id", string(e.ReportID)),
			slog.String("reason", reason),
		)
		if attempt < s.maxRetries {
			sleep(ctx, time.Duration(attempt)*s.backoff)
		}
	}
	metrics.NotificationsTotal.WithLabelValues("webhook", "error").Inc()
	return false
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
