package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// ReservationRejection is a business-rule rejection of a reservation attempt
// (sold out, over the per-guest cap, wrong flow for the tier's price class).
// The Reason is a complete human-readable message and is surfaced to the
// caller verbatim.
type ReservationRejection struct {
	Reason string
}

func (e *ReservationRejection) Error() string {
	return e.Reason
}

// NewReservationRejection returns a ReservationRejection with the given reason.
func NewReservationRejection(reason string) *ReservationRejection {
	return &ReservationRejection{Reason: reason}
}

// IsReservationRejection reports whether err is a ReservationRejection and
// returns it if so.
func IsReservationRejection(err error) (*ReservationRejection, bool) {
	var rej *ReservationRejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
