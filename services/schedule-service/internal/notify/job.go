package notify

import "time"

// Topic carries booking/cancellation notification jobs to the
// notification-service consumer.
const Topic = "schedule.notification.requested.v1"

type Action string

const (
	ActionCreated   Action = "created"
	ActionCancelled Action = "cancelled"
)

// Job is the ephemeral notification payload. It carries resolved display
// fields (not ids) so the consumer never needs a round trip back to the
// store, and so the message reflects the appointment as it existed when the
// event happened.
type Job struct {
	RecipientName   string    `json:"recipientName"`
	RecipientEmail  string    `json:"recipientEmail"`
	CounterpartName string    `json:"counterpartName"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	Objective       string    `json:"objective"`
	Action          Action    `json:"action"`
}
