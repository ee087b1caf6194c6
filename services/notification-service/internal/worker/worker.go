// Package worker turns appointment events into rendered emails and delivers
// them with bounded retries.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinicbook/clinicbook/services/notification-service/internal/email"
)

// Job mirrors the payload published on the schedule notification topic.
type Job struct {
	RecipientName   string    `json:"recipientName"`
	RecipientEmail  string    `json:"recipientEmail"`
	CounterpartName string    `json:"counterpartName"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	Objective       string    `json:"objective"`
	Action          string    `json:"action"`
}

const (
	ActionCreated   = "created"
	ActionCancelled = "cancelled"
)

// Render produces the subject and plain-text body for a job.
func Render(job Job) (subject, body string) {
	when := job.ScheduledAt.UTC().Format("Monday, 2 January 2006 at 15:04 MST")

	switch job.Action {
	case ActionCancelled:
		subject = "Appointment Cancelled"
		body = fmt.Sprintf(
			"Hello %s,\n\nYour appointment with %s on %s has been cancelled.\n\nReason for visit: %s\n\nIf you still need this appointment, please book a new time.\n",
			job.RecipientName, job.CounterpartName, when, job.Objective,
		)
	default:
		subject = "Appointment Confirmed"
		body = fmt.Sprintf(
			"Hello %s,\n\nYour appointment with %s is confirmed for %s.\n\nReason for visit: %s\n\nIf you need to reschedule, please cancel and book a new time.\n",
			job.RecipientName, job.CounterpartName, when, job.Objective,
		)
	}
	return subject, body
}

// Result records the outcome of a delivery attempt sequence.
type Result struct {
	Subject  string
	Attempts int
	Err      error
}

// Deliverer sends rendered jobs over SMTP, retrying transient failures with
// exponential backoff. Exhausted jobs are logged and dropped; delivery
// problems never flow back to the producer.
type Deliverer struct {
	sender      email.Sender
	logger      *slog.Logger
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewDeliverer(sender email.Sender, logger *slog.Logger) *Deliverer {
	return &Deliverer{
		sender:      sender,
		logger:      logger,
		maxAttempts: 3,
		baseDelay:   2 * time.Second,
		sleep:       sleepCtx,
	}
}

func (d *Deliverer) Deliver(ctx context.Context, job Job) Result {
	subject, body := Render(job)

	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		lastErr = d.sender.Send(job.RecipientEmail, subject, body)
		if lastErr == nil {
			d.logger.Info("notification delivered",
				"recipient", job.RecipientEmail, "action", job.Action, "attempt", attempt)
			return Result{Subject: subject, Attempts: attempt}
		}

		d.logger.Warn("notification delivery failed",
			"recipient", job.RecipientEmail, "action", job.Action,
			"attempt", attempt, "err", lastErr)

		if attempt == d.maxAttempts {
			break
		}
		// 2s, 4s, 8s, ... doubling per retry.
		delay := d.baseDelay << (attempt - 1)
		if err := d.sleep(ctx, delay); err != nil {
			return Result{Subject: subject, Attempts: attempt, Err: err}
		}
	}

	d.logger.Error("notification dropped after retries",
		"recipient", job.RecipientEmail, "action", job.Action,
		"attempts", d.maxAttempts, "err", lastErr)
	return Result{Subject: subject, Attempts: d.maxAttempts, Err: lastErr}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
