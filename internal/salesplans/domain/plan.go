// Package domain holds the sales plan model and its field rules.
package domain

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"sales_visits_backend/platform/validator"
)

const maxNameLength = 255

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9áéíóúÁÉÍÓÚñÑ\s-]+$`)

// ErrInvalidPlan is matched by every plan validation failure.
var ErrInvalidPlan = errors.New("invalid sales plan")

// ValidationError carries the user-facing message of a failed plan rule.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidPlan }

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// Plan is a commercial target for one client over a date range.
type Plan struct {
	ID            int64
	Name          string
	StartDate     time.Time
	EndDate       time.Time
	ClientID      string
	SellerID      *string
	TargetRevenue float64
	Objectives    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks name, client, dates and revenue in that order and returns
// the first violation.
func (p *Plan) Validate() error {
	if err := p.validateName(); err != nil {
		return err
	}
	if err := p.validateClientID(); err != nil {
		return err
	}
	if err := p.validateDates(); err != nil {
		return err
	}
	return p.validateTargetRevenue()
}

func (p *Plan) validateName() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name is required")
	}
	if !namePattern.MatchString(p.Name) {
		return invalid("name may only contain letters, numbers, spaces, hyphens and accented vowels")
	}
	if utf8.RuneCountInString(p.Name) > maxNameLength {
		return invalid("name cannot exceed 255 characters")
	}
	return nil
}

func (p *Plan) validateClientID() error {
	if p.ClientID == "" {
		return invalid("client_id is required")
	}
	if !validator.IsCanonicalUUID(p.ClientID) {
		return invalid("client_id must be a valid UUID")
	}
	if p.SellerID != nil && !validator.IsCanonicalUUID(*p.SellerID) {
		return invalid("seller_id must be a valid UUID")
	}
	return nil
}

func (p *Plan) validateDates() error {
	if p.StartDate.IsZero() {
		return invalid("start_date is required")
	}
	if p.EndDate.IsZero() {
		return invalid("end_date is required")
	}
	if p.StartDate.After(p.EndDate) {
		return invalid("start_date must be before or equal to end_date")
	}
	return nil
}

func (p *Plan) validateTargetRevenue() error {
	if math.IsNaN(p.TargetRevenue) || math.IsInf(p.TargetRevenue, 0) {
		return invalid("target_revenue must be a number")
	}
	if p.TargetRevenue < 0 {
		return invalid("target_revenue must be greater than or equal to 0")
	}
	if math.Abs(p.TargetRevenue-RoundCents(p.TargetRevenue)) > 0.001 {
		return invalid("target_revenue must have at most 2 decimals")
	}
	return nil
}

// RoundCents rounds v to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts ISO 8601 timestamps with or without offset ("Z" included)
// and bare dates. Values without an offset are read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalid("dates must be valid ISO 8601 timestamps")
}
