package domain

// StatusKind tags a SubmissionStatus
type StatusKind string

const (
	StatusIdle      StatusKind = "idle"
	StatusSending   StatusKind = "sending"
	StatusSucceeded StatusKind = "succeeded"
	StatusFailed    StatusKind = "failed"
)

// FailureReason classifies a Failed status for callers that need more than the message
type FailureReason string

const (
	ReasonNone          FailureReason = ""
	ReasonValidation    FailureReason = "validation"
	ReasonTransport     FailureReason = "transport"
	ReasonTimeout       FailureReason = "timeout"
	ReasonConfiguration FailureReason = "configuration"
	ReasonPartial       FailureReason = "partial"
)

// SubmissionStatus describes where one submission attempt stands.
// Message and Reason are only set when Kind is StatusFailed.
type SubmissionStatus struct {
	Kind    StatusKind    `json:"status"`
	Message string        `json:"message,omitempty"`
	Reason  FailureReason `json:"reason,omitempty"`
	// Fields is populated for validation failures
	Fields []string `json:"fields,omitempty"`
}

func Idle() SubmissionStatus      { return SubmissionStatus{Kind: StatusIdle} }
func Sending() SubmissionStatus   { return SubmissionStatus{Kind: StatusSending} }
func Succeeded() SubmissionStatus { return SubmissionStatus{Kind: StatusSucceeded} }

// Failed builds a terminal failure status
func Failed(reason FailureReason, message string) SubmissionStatus {
	return SubmissionStatus{Kind: StatusFailed, Reason: reason, Message: message}
}

func (s SubmissionStatus) IsTerminal() bool {
	return s.Kind == StatusSucceeded || s.Kind == StatusFailed
}

func (s SubmissionStatus) String() string {
	if s.Kind == StatusFailed {
		return string(s.Kind) + "(" + s.Message + ")"
	}
	return string(s.Kind)
}
