package core

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to every rich error the module emits.
const (
	ErrorCodeTransport  = "CARRIER_TRANSPORT_FAILURE"
	ErrorCodeRejection  = "CARRIER_BUSINESS_REJECTION"
	ErrorCodeParse      = "CARRIER_RESPONSE_UNPARSEABLE"
	ErrorCodeBadInput   = "CARRIER_SYNC_BAD_INPUT"
	ErrorCodeInternal   = "CARRIER_SYNC_INTERNAL"
	ErrorCodeConflict   = "CARRIER_SYNC_IN_PROGRESS"
	ErrorCodeNotFound   = "CARRIER_SYNC_NOT_FOUND"
	ErrorCodeOperation  = "CARRIER_SYNC_OPERATION_FAILED"
)

var (
	ErrWorkflowNotFound = errors.New("core: submission workflow not found")
	ErrWorkItemNotFound = errors.New("core: work item not found")

	// ErrSyncInProgress signals that another sequencer run already holds the
	// work item's lock; the caller must not race it.
	ErrSyncInProgress = errors.New("core: sync already in progress for work item")
)

// TransportError wraps a network/timeout/5xx failure. Transport errors are the
// only class the remote client may retry: the carrier never processed the
// request, so a repeat cannot duplicate entities.
func TransportError(source error, message string, code int, metadata map[string]any) error {
	return wrapRich(source, goerrors.CategoryExternal, message, code, ErrorCodeTransport, metadata)
}

// BusinessRejection wraps a structured error the carrier embedded in an
// otherwise successful response. The carrier processed the request, so the
// failure is terminal for this attempt; automatic retry would duplicate
// remote entities.
func BusinessRejection(message string, metadata map[string]any) error {
	return wrapRich(nil, goerrors.CategoryOperation, message, 0, ErrorCodeRejection, metadata)
}

// ParseError marks a response whose shape made the step outcome unusable, for
// example a missing identifier path. The step counts as failed even when the
// outer call reported success.
func ParseError(message string, metadata map[string]any) error {
	return wrapRich(nil, goerrors.CategoryBadInput, message, 0, ErrorCodeParse, metadata)
}

// IsTransient reports whether an error is eligible for the bounded transport
// retry policy. Business rejections and parse failures are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.Category == goerrors.CategoryExternal
	}
	return false
}

func wrapRich(
	source error,
	category goerrors.Category,
	message string,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	var rich *goerrors.Error
	if source != nil {
		rich = goerrors.Wrap(source, category, message)
	} else {
		rich = goerrors.New(message, category)
	}
	if code > 0 {
		rich = rich.WithCode(code)
	}
	rich = rich.WithTextCode(textCode)
	if len(metadata) > 0 {
		rich = rich.WithMetadata(metadata)
	}
	return rich
}
