// Package domain holds the scheduled-visit aggregate and its structural
// invariants. It has no I/O; existence of sellers and clients is checked by
// the service layer.
package domain

import (
	"time"

	"sales_visits_backend/platform/validator"
)

// Status is the completion state of one client within a visit.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCompleted Status = "COMPLETED"
)

// DateLayout is the DD-MM-YYYY wire format for visit dates.
const DateLayout = validator.DateLayout

// Visit is one seller's set of client calls for a single calendar day.
type Visit struct {
	ID        string
	SellerID  string
	Date      time.Time
	Clients   []VisitClient
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DateText returns the visit date in DD-MM-YYYY form.
func (v *Visit) DateText() string {
	return FormatDate(v.Date)
}

// VisitClient is a client's membership in a visit plus its completion record.
type VisitClient struct {
	ID          int64
	VisitID     string
	ClientID    string
	Status      Status
	Find        *string
	Filename    *string
	FilenameURL *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewVisitClient returns a scheduled membership for clientID.
func NewVisitClient(clientID string) *VisitClient {
	return &VisitClient{ClientID: clientID, Status: StatusScheduled}
}

// Validate checks the client reference shape.
func (c *VisitClient) Validate() error {
	if c.ClientID == "" {
		return newValidationError(ErrClientIDRequired, "client_id is required")
	}
	if !validator.IsCanonicalUUID(c.ClientID) {
		return newValidationError(ErrClientIDMalformed, "client_id must be a valid UUID: "+c.ClientID)
	}
	return nil
}

// ParseDate parses a DD-MM-YYYY string into a UTC calendar date.
func ParseDate(text string) (time.Time, error) {
	t, err := time.Parse(DateLayout, text)
	if err != nil {
		return time.Time{}, err
	}
	return CalendarDay(t), nil
}

// FormatDate renders a calendar date as DD-MM-YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CalendarDay strips the time of day and pins the date to UTC.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
