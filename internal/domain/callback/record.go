package callback

import (
	"time"

	"github.com/google/uuid"
)

// Channel is the ingress path a callback arrived on.
type Channel string

const (
	ChannelIPN    Channel = "IPN"
	ChannelReturn Channel = "RETURN"
)

// Record is one inbound VNPay callback kept for postmortem and dispute handling.
// Params holds the vnp_* fields as received, minus the signature.
type Record struct {
	ID             uuid.UUID         `json:"id" bson:"_id"`
	Reference      string            `json:"reference" bson:"reference"`
	Channel        Channel           `json:"channel" bson:"channel"`
	Params         map[string]string `json:"params" bson:"params"`
	SignatureValid bool              `json:"signature_valid" bson:"signature_valid"`
	Outcome        string            `json:"outcome" bson:"outcome"`
	ResponseCode   string            `json:"response_code" bson:"response_code"`
	ClientIP       string            `json:"client_ip,omitempty" bson:"client_ip,omitempty"`
	CorrelationID  string            `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	Error          string            `json:"error,omitempty" bson:"error,omitempty"`
	ReceivedAt     time.Time         `json:"received_at" bson:"received_at"`
}
