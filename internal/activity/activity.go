package activity

import "time"

type Kind string

const (
	KindSigningLoaded    Kind = "SIGNING_DOCUMENT_LOADED"
	KindSigningCompleted Kind = "SIGNING_DOCUMENT_COMPLETED"
	KindSigningFailed    Kind = "SIGNING_DOCUMENT_EXCEPTION"
	KindContractAccepted Kind = "CONTRACT_ACCEPTED"
	KindAcceptFailed     Kind = "CONTRACT_ACCEPT_FAILED"
	KindAuditorUpdated   Kind = "AUDITOR_UPDATED"
)

// Entry is one append-only activity row for a booking.
type Entry struct {
	ID            string    `json:"id,omitempty"`
	BookingNumber string    `json:"bookingNumber"`
	Kind          Kind      `json:"kind"`
	Summary       string    `json:"summary"`
	Actor         string    `json:"actor"`
	OccurredAt    time.Time `json:"occurredAt"`
	Data          any       `json:"data,omitempty"`
}
