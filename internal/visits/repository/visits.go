package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sales_visits_backend/internal/visits/domain"

	"github.com/jackc/pgx/v5"
)

const existsForSellerDateQuery = `
	SELECT EXISTS(
		SELECT 1 FROM scheduled_visits WHERE seller_id = $1 AND visit_date = $2
	)`

const insertVisitQuery = `
	INSERT INTO scheduled_visits (id, seller_id, visit_date)
	VALUES ($1, $2, $3)
	RETURNING created_at, updated_at`

const insertVisitClientsQuery = `
	INSERT INTO scheduled_visit_clients (visit_id, client_id, status)
	SELECT $1, t.client_id, 'SCHEDULED'
	FROM unnest($2::text[]) WITH ORDINALITY AS t(client_id, ord)
	ORDER BY t.ord
	RETURNING id, client_id, status, created_at, updated_at`

const getByOwnerQuery = `
	SELECT id, seller_id, visit_date, created_at, updated_at
	FROM scheduled_visits
	WHERE id = $1 AND seller_id = $2`

const listBySellerQuery = `
	SELECT v.id, v.seller_id, v.visit_date, v.created_at, v.updated_at, COUNT(c.id) AS client_count
	FROM scheduled_visits v
	LEFT JOIN scheduled_visit_clients c ON c.visit_id = v.id
	WHERE v.seller_id = $1 AND ($2::date IS NULL OR v.visit_date = $2::date)
	GROUP BY v.id
	ORDER BY v.visit_date, v.created_at, v.id`

// VisitSummary pairs a visit with the number of clients it holds.
type VisitSummary struct {
	Visit       domain.Visit
	ClientCount int
}

// Create persists the visit and its client memberships in one transaction.
// Returns ErrDuplicateVisit when the seller already has a visit on that date.
func (r *Repository) Create(ctx context.Context, visit *domain.Visit) (*domain.Visit, error) {
	created := *visit
	created.Clients = make([]domain.VisitClient, 0, len(visit.Clients))

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, existsForSellerDateQuery, visit.SellerID, visit.Date).Scan(&exists); err != nil {
			return fmt.Errorf("check duplicate: %w", err)
		}
		if exists {
			return ErrDuplicateVisit
		}

		err := tx.QueryRow(ctx, insertVisitQuery, visit.ID, visit.SellerID, visit.Date).
			Scan(&created.CreatedAt, &created.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err, uniqueSellerDateConstraint) {
				return ErrDuplicateVisit
			}
			return fmt.Errorf("insert visit: %w", err)
		}

		clientIDs := make([]string, 0, len(visit.Clients))
		for _, c := range visit.Clients {
			clientIDs = append(clientIDs, c.ClientID)
		}

		rows, err := tx.Query(ctx, insertVisitClientsQuery, visit.ID, clientIDs)
		if err != nil {
			return fmt.Errorf("insert visit clients: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			c := domain.VisitClient{VisitID: visit.ID}
			var status string
			if err := rows.Scan(&c.ID, &c.ClientID, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
				return fmt.Errorf("scan visit client: %w", err)
			}
			c.Status = domain.Status(status)
			created.Clients = append(created.Clients, c)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("insert visit clients: %w", err)
		}
		if len(created.Clients) != len(clientIDs) {
			return fmt.Errorf("inserted %d of %d visit clients", len(created.Clients), len(clientIDs))
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("create visit", err)
	}

	return &created, nil
}

// GetByOwner returns the visit only when it belongs to sellerID; nil when not found.
func (r *Repository) GetByOwner(ctx context.Context, visitID, sellerID string) (*domain.Visit, error) {
	var v domain.Visit
	err := r.db.QueryRow(ctx, getByOwnerQuery, visitID, sellerID).
		Scan(&v.ID, &v.SellerID, &v.Date, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get visit", err)
	}
	v.Date = domain.CalendarDay(v.Date)
	return &v, nil
}

// ListBySeller returns the seller's visits, optionally restricted to one date,
// ordered by date then creation time.
func (r *Repository) ListBySeller(ctx context.Context, sellerID string, date *time.Time) ([]VisitSummary, error) {
	rows, err := r.db.Query(ctx, listBySellerQuery, sellerID, date)
	if err != nil {
		return nil, storeErr("list visits", err)
	}
	defer rows.Close()

	items := make([]VisitSummary, 0)
	for rows.Next() {
		var s VisitSummary
		var count int64
		if err := rows.Scan(&s.Visit.ID, &s.Visit.SellerID, &s.Visit.Date, &s.Visit.CreatedAt, &s.Visit.UpdatedAt, &count); err != nil {
			return nil, storeErr("scan visit", err)
		}
		s.Visit.Date = domain.CalendarDay(s.Visit.Date)
		s.ClientCount = int(count)
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list visits", err)
	}

	return items, nil
}

