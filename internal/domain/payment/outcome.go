package payment

// Outcome is the result of reconciling one callback. Every callback, valid or not,
// resolves to exactly one Outcome; only store failures travel as errors.
type Outcome string

const (
	OutcomeConfirmed        Outcome = "CONFIRMED"
	OutcomeUnknownOrder     Outcome = "UNKNOWN_ORDER"
	OutcomeAlreadyProcessed Outcome = "ALREADY_PROCESSED"
	OutcomeAmountMismatch   Outcome = "AMOUNT_MISMATCH"
	OutcomeInvalidSignature Outcome = "INVALID_SIGNATURE"
	OutcomeInternalError    Outcome = "INTERNAL_ERROR"
)

// IPN response codes expected by VNPay.
const (
	CodeConfirmed        = "00"
	CodeUnknownOrder     = "01"
	CodeAlreadyProcessed = "02"
	CodeAmountMismatch   = "04"
	CodeInvalidSignature = "97"
	CodeInternalError    = "99"
)

var outcomeCodes = map[Outcome]struct {
	code    string
	message string
}{
	OutcomeConfirmed:        {CodeConfirmed, "Confirm Success"},
	OutcomeUnknownOrder:     {CodeUnknownOrder, "Order not found"},
	OutcomeAlreadyProcessed: {CodeAlreadyProcessed, "Order already confirmed"},
	OutcomeAmountMismatch:   {CodeAmountMismatch, "Invalid amount"},
	OutcomeInvalidSignature: {CodeInvalidSignature, "Invalid signature"},
	OutcomeInternalError:    {CodeInternalError, "Unknown error"},
}

// Code returns the IPN response code for the outcome.
func (o Outcome) Code() string {
	if c, ok := outcomeCodes[o]; ok {
		return c.code
	}
	return CodeInternalError
}

// Message returns the IPN response message for the outcome.
func (o Outcome) Message() string {
	if c, ok := outcomeCodes[o]; ok {
		return c.message
	}
	return outcomeCodes[OutcomeInternalError].message
}

// Result is what the reconciler reports back to the callback channel.
type Result struct {
	Outcome Outcome
	Status  Status // Status of the transaction after reconciliation; empty when unknown
}
