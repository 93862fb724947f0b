package domain

// ErrorKind is the closed set of failure categories the booking system can
// report. Callers branch on kind via errors.Is with the sentinels below.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindDuplicate        ErrorKind = "duplicate"
	KindDuplicateBooking ErrorKind = "duplicate_booking"
	KindNotFound         ErrorKind = "not_found"
	KindAlreadyCanceled  ErrorKind = "already_canceled"
	KindAlreadyStarted   ErrorKind = "already_started"
	KindNotWaitlisted    ErrorKind = "not_waitlisted"
	KindConflict         ErrorKind = "conflict"
	KindNoSlot           ErrorKind = "no_slot"
)

// Error is a structured domain error. The identifier fields carry enough
// context (the offending booking, conference, or user) for a caller to explain
// the failure without re-querying the system.
type Error struct {
	Kind           ErrorKind
	Message        string
	UserID         string
	ConferenceName string
	BookingID      string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict)
// reports whether err is a conflict regardless of its message or context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrDuplicate        = &Error{Kind: KindDuplicate}
	ErrDuplicateBooking = &Error{Kind: KindDuplicateBooking}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrAlreadyCanceled  = &Error{Kind: KindAlreadyCanceled}
	ErrAlreadyStarted   = &Error{Kind: KindAlreadyStarted}
	ErrNotWaitlisted    = &Error{Kind: KindNotWaitlisted}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrNoSlot           = &Error{Kind: KindNoSlot}
)
