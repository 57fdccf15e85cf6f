package payments

import (
	"context"
	"math"
)

// Session statuses reported by the checkout provider
const (
	SessionStatusOpen     = "open"
	SessionStatusComplete = "complete"
	SessionStatusExpired  = "expired"
)

// Metadata keys carried on provider-side sessions. The session metadata is
// the only correlation store between checkout creation and confirmation;
// there is no local pending-orders table.
const (
	MetadataTutorID      = "tutorId"
	MetadataStudentEmail = "studentEmail"
)

// CreateSessionParams describes the hosted checkout page to create
type CreateSessionParams struct {
	Name          string
	Description   string
	Image         string
	UnitAmount    int64 // minor currency units
	Quantity      int64
	CustomerEmail string
	Metadata      map[string]string
	SuccessURL    string
	CancelURL     string
}

// Session is the provider's view of a checkout session
type Session struct {
	ID              string
	URL             string
	Status          string
	PaymentIntentID string
	AmountTotal     int64 // minor currency units
	Metadata        map[string]string
}

// Provider creates hosted checkout sessions and reports their final state
type Provider interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}

// MinorUnits converts a price in decimal currency units to integer minor
// units, e.g. 19.99 -> 1999. Rounded to absorb float representation error.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
