// Package identity provides the gateway to the external identity service.
// Sellers and clients are owned by that service; this package only asks
// whether an id exists and fetches its detail record.
package identity

import (
	"context"
)

// Record is the detail document returned by the identity service, passed
// through as decoded JSON.
type Record map[string]interface{}

// Name returns the record's "name" field, or "" when absent.
func (r Record) Name() string {
	name, _ := r["name"].(string)
	return name
}

// Directory defines the identity lookups other modules depend on.
type Directory interface {
	// Exists reports whether the user id is known. Transport failures are
	// resolved according to the configured failure policy.
	Exists(ctx context.Context, userID string) bool
	// FetchDetail returns the user's detail record; ok is false on any failure.
	FetchDetail(ctx context.Context, userID string) (Record, bool)
	// FindUserIDsByName returns ids of users matching name and role; empty on any failure.
	FindUserIDsByName(ctx context.Context, name, role string) []string
}

// RoleClient is the identity role of client accounts.
const RoleClient = "Cliente"
