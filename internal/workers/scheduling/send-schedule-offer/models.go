// internal/workers/scheduling/send-schedule-offer/models.go
package sendscheduleoffer

import "renovation-workers/internal/models"

type Input struct {
	ContractorID string           `json:"contractorId"`
	JobID        string           `json:"jobId"`
	JobDate      string           `json:"jobDate"` // YYYY-MM-DD
	TimeBlock    models.TimeBlock `json:"timeBlock"`
	JobAddress   string           `json:"jobAddress,omitempty"`
	Score        *int             `json:"score,omitempty"`
	Channels     []string         `json:"channels,omitempty"` // defaults to every enabled channel
}

type Output struct {
	OfferID  string          `json:"offerId"`
	Status   string          `json:"status"`
	Channels []ChannelResult `json:"channels"`
	SentAt   string          `json:"sentAt"` // ISO 8601
}

type ChannelResult struct {
	Channel   string `json:"channel"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Statuses. An offer is "partial" when one channel delivered and another failed.
const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
	StatusDisabled = "disabled"
)
