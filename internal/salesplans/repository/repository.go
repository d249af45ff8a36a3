package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sales_visits_backend/internal/salesplans/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrDuplicatePlanName is returned when a plan with the same name exists.
var ErrDuplicatePlanName = errors.New("a sales plan with this name already exists")

const (
	uniqueViolationCode = "23505"
	planColumns         = "id, name, start_date, end_date, client_id, seller_id, target_revenue, COALESCE(objectives, ''), created_at, updated_at"

	insertPlanQuery = `
		INSERT INTO sales_plans (name, start_date, end_date, client_id, seller_id, target_revenue, objectives)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	deleteAllPlansQuery = `DELETE FROM sales_plans`
)

// Repository handles sales plan persistence.
type Repository struct {
	db DB
}

// New creates a new sales plans repository.
func New(db DB) *Repository {
	return &Repository{db: db}
}

// ListParams filters and pages the plan listing. ClientIDs, when non-nil,
// restricts to those clients and takes precedence over ClientID.
type ListParams struct {
	Name      string
	ClientID  string
	ClientIDs []string
	SellerID  string
	StartFrom *time.Time
	EndUntil  *time.Time
	Limit     int
	Offset    int
}

// Create inserts the plan and fills its generated fields.
func (r *Repository) Create(ctx context.Context, plan *domain.Plan) (*domain.Plan, error) {
	created := *plan
	err := r.db.QueryRow(ctx, insertPlanQuery,
		plan.Name, plan.StartDate, plan.EndDate, plan.ClientID, plan.SellerID, plan.TargetRevenue, plan.Objectives,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePlanName
		}
		return nil, fmt.Errorf("insert sales plan: %w", err)
	}
	return &created, nil
}

// List returns one page of plans matching params plus the total match count.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Plan, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if params.Name != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+params.Name+"%")
		argIdx++
	}
	if params.SellerID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("seller_id = $%d", argIdx))
		args = append(args, params.SellerID)
		argIdx++
	}
	if params.ClientIDs != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("client_id = ANY($%d::text[])", argIdx))
		args = append(args, params.ClientIDs)
		argIdx++
	} else if params.ClientID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("client_id = $%d", argIdx))
		args = append(args, params.ClientID)
		argIdx++
	}
	if params.StartFrom != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("start_date >= $%d", argIdx))
		args = append(args, *params.StartFrom)
		argIdx++
	}
	if params.EndUntil != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("end_date <= $%d", argIdx))
		args = append(args, *params.EndUntil)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM sales_plans WHERE %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales plans: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM sales_plans
		WHERE %s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, planColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales plans: %w", err)
	}
	defer rows.Close()

	plans := make([]domain.Plan, 0)
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(
			&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.ClientID, &p.SellerID,
			&p.TargetRevenue, &p.Objectives, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan sales plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list sales plans: %w", err)
	}

	return plans, total, nil
}

// DeleteAll removes every plan and returns how many were deleted.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, deleteAllPlansQuery)
	if err != nil {
		return 0, fmt.Errorf("delete sales plans: %w", err)
	}
	return tag.RowsAffected(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
