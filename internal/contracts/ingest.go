package contracts

import "encoding/json"

// Messages surfaced to API callers. Storage causes are never exposed.
const (
	MsgDuplicateDeal = "Duplicate deal_id"
	MsgInternalError = "Internal server error"
)

// Validation failure codes, matching the vocabulary clients already handle
const (
	CodeInvalidType      = "invalid_type"
	CodeInvalidEnumValue = "invalid_enum_value"
	CodeTooSmall         = "too_small"
	CodeTooBig           = "too_big"
	CodeCustom           = "custom"
)

// ValidationFailure is one field-level constraint violation
type ValidationFailure struct {
	Code    string   `json:"code"`
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// IngestStatus tells whether a deal was persisted
type IngestStatus string

const (
	IngestAccepted IngestStatus = "accepted"
	IngestRejected IngestStatus = "rejected"
)

// RejectReason classifies a rejected ingestion
type RejectReason string

const (
	RejectDuplicate  RejectReason = "duplicate"
	RejectValidation RejectReason = "validation"
	RejectInternal   RejectReason = "internal"
)

// IngestResult is the outcome of running one input through the ingestion pipeline.
// Reason and Failures are only meaningful when Status is IngestRejected.
type IngestResult struct {
	Status   IngestStatus
	DealID   string
	Reason   RejectReason
	Failures []ValidationFailure
}

// Accepted reports whether the deal was persisted
func (r IngestResult) Accepted() bool {
	return r.Status == IngestAccepted
}

// ErrorPayload returns the value placed in the "error" field of API responses:
// the duplicate message, the validation failure list, or the generic internal message.
func (r IngestResult) ErrorPayload() interface{} {
	switch r.Reason {
	case RejectDuplicate:
		return MsgDuplicateDeal
	case RejectValidation:
		return r.Failures
	default:
		return MsgInternalError
	}
}

// BatchError is one rejected element of a batch
type BatchError struct {
	DealID string      `json:"deal_id"`
	Error  interface{} `json:"error"`
}

// BatchResult summarizes a batch ingestion; Errors follows input order
type BatchResult struct {
	Success int          `json:"success"`
	Errors  []BatchError `json:"errors"`
}

// MarshalJSON keeps "errors" an array even when nothing failed
func (b BatchResult) MarshalJSON() ([]byte, error) {
	type alias BatchResult
	if b.Errors == nil {
		b.Errors = []BatchError{}
	}
	return json.Marshal(alias(b))
}
