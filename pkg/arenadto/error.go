package arenadto

import "errors"

// ErrorKind is the stable failure taxonomy reported to callers.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindInvalidState  ErrorKind = "INVALID_STATE"
	KindForbidden     ErrorKind = "FORBIDDEN"
	KindOutOfTurn     ErrorKind = "OUT_OF_TURN"
	KindMalformedMove ErrorKind = "MALFORMED_MOVE"
	KindIllegalMove   ErrorKind = "ILLEGAL_MOVE"
	KindInvalidWinner ErrorKind = "INVALID_WINNER"
	KindStoreFailure  ErrorKind = "STORE_FAILURE"
)

type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != "" {
		return string(e.Kind)
	}
	return "arena error"
}

// Errf builds a DomainError with the given kind and message.
func Errf(kind ErrorKind, msg string) DomainError {
	return DomainError{Kind: kind, Message: msg}
}

// KindOf extracts the kind from an error chain, KindStoreFailure otherwise.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStoreFailure
}
