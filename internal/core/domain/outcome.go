package domain

import "fmt"

// OutcomeKind classifies a dispatch response.
type OutcomeKind string

const (
	OutcomeSuccess          OutcomeKind = "success"
	OutcomeBusinessFailure  OutcomeKind = "business_failure"
	OutcomeTransportFailure OutcomeKind = "transport_failure"
)

// Outcome is the classified result of one task submission.
//
// Success covers both an explicit success flag in the response and the
// configured "already equivalent" business codes. Any other explicit
// business code is a BusinessFailure. Everything transport-level
// (non-2xx, timeout, connection error, malformed body) is a
// TransportFailure and is the only kind the retry controller retries.
type Outcome struct {
	Kind    OutcomeKind
	ErrorID int    // business error id, 0 when absent
	Info    string // human-readable detail from the response
	Err     error  // transport error, nil otherwise
}

// Success builds a successful outcome.
func Success(errorID int, info string) Outcome {
	return Outcome{Kind: OutcomeSuccess, ErrorID: errorID, Info: info}
}

// BusinessFailure builds an outcome for an explicit non-success business code.
func BusinessFailure(errorID int, info string) Outcome {
	return Outcome{Kind: OutcomeBusinessFailure, ErrorID: errorID, Info: info}
}

// TransportFailure builds an outcome for a transport-level fault.
func TransportFailure(err error) Outcome {
	return Outcome{Kind: OutcomeTransportFailure, Err: err}
}

// IsSuccess reports whether the outcome counts as a business success.
func (o Outcome) IsSuccess() bool {
	return o.Kind == OutcomeSuccess
}

// IsFailure reports whether the outcome counts toward the circuit breaker.
func (o Outcome) IsFailure() bool {
	return o.Kind != OutcomeSuccess
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeTransportFailure:
		return fmt.Sprintf("transport failure: %v", o.Err)
	case OutcomeBusinessFailure:
		return fmt.Sprintf("business failure: error_id=%d info=%q", o.ErrorID, o.Info)
	default:
		return fmt.Sprintf("success: error_id=%d", o.ErrorID)
	}
}
