package outbox

import (
	"encoding/json"
	"time"

	"github.com/lms-payment-gateway/internal/domain/shared"
)

// Message is an enrollment grant waiting to be relayed to Kafka.
// It is written in the same database transaction that settles the payment.
type Message struct {
	ID            int64               `json:"id"`
	Reference     string              `json:"reference"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(grant *shared.EnrollmentGrantRequest) (*Message, error) {
	payload, err := json.Marshal(grant)
	if err != nil {
		return nil, err
	}

	return &Message{
		Reference: grant.Reference,
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ExhaustedAfter reports whether one more failed attempt reaches maxAttempts.
func (m *Message) ExhaustedAfter(maxAttempts int) bool {
	return m.Attempts+1 >= maxAttempts
}

// EnrollmentGrant decodes the payload.
func (m *Message) EnrollmentGrant() (*shared.EnrollmentGrantRequest, error) {
	var grant shared.EnrollmentGrantRequest
	if err := json.Unmarshal(m.Payload, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}
