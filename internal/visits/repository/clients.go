package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sales_visits_backend/internal/visits/domain"

	"github.com/jackc/pgx/v5"
)

const visitClientColumns = `id, visit_id, client_id, status, find, filename, filename_url, created_at, updated_at`

const getClientMembershipQuery = `
	SELECT ` + visitClientColumns + `
	FROM scheduled_visit_clients
	WHERE visit_id = $1 AND client_id = $2`

const listClientsQuery = `
	SELECT ` + visitClientColumns + `
	FROM scheduled_visit_clients
	WHERE visit_id = $1
	ORDER BY id`

// ClientUpdate is a partial update of one membership row. Nil fields are
// left unchanged, except that ClearFile nulls filename and filename_url
// when no new file is given.
type ClientUpdate struct {
	Status      *domain.Status
	Find        *string
	Filename    *string
	FilenameURL *string
	ClearFile   bool
}

// GetClientMembership returns the client's row within the visit; nil when absent.
func (r *Repository) GetClientMembership(ctx context.Context, visitID, clientID string) (*domain.VisitClient, error) {
	c, err := scanVisitClient(r.db.QueryRow(ctx, getClientMembershipQuery, visitID, clientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get visit client", err)
	}
	return c, nil
}

// ListClients returns the visit's memberships in insertion order.
func (r *Repository) ListClients(ctx context.Context, visitID string) ([]domain.VisitClient, error) {
	rows, err := r.db.Query(ctx, listClientsQuery, visitID)
	if err != nil {
		return nil, storeErr("list visit clients", err)
	}
	defer rows.Close()

	items := make([]domain.VisitClient, 0)
	for rows.Next() {
		c, err := scanVisitClient(rows)
		if err != nil {
			return nil, storeErr("scan visit client", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list visit clients", err)
	}
	return items, nil
}

// UpdateClientFields applies the update to exactly one membership row. It
// returns false when no row matched; membership is not checked separately.
func (r *Repository) UpdateClientFields(ctx context.Context, visitID, clientID string, update ClientUpdate) (bool, error) {
	query, args := buildClientUpdate(visitID, clientID, update)

	var updated bool
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		updated = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, storeErr("update visit client", err)
	}
	return updated, nil
}

func buildClientUpdate(visitID, clientID string, update ClientUpdate) (string, []any) {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 6)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Status != nil {
		add("status", string(*update.Status))
	}
	if update.Find != nil {
		add("find", *update.Find)
	}
	if update.Filename != nil {
		add("filename", *update.Filename)
	}
	if update.FilenameURL != nil {
		add("filename_url", *update.FilenameURL)
	}
	if update.ClearFile {
		if update.Filename == nil {
			sets = append(sets, "filename = NULL")
		}
		if update.FilenameURL == nil {
			sets = append(sets, "filename_url = NULL")
		}
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, visitID, clientID)
	query := fmt.Sprintf(
		"UPDATE scheduled_visit_clients SET %s WHERE visit_id = $%d AND client_id = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args),
	)
	return query, args
}

func scanVisitClient(row pgx.Row) (*domain.VisitClient, error) {
	var c domain.VisitClient
	var status string
	if err := row.Scan(&c.ID, &c.VisitID, &c.ClientID, &status, &c.Find, &c.Filename, &c.FilenameURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = domain.Status(status)
	return &c, nil
}
