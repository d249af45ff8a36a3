// Package service holds the sales plan business rules: creation against the
// identity directory, filtered listing with name enrichment, and bulk removal.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sales_visits_backend/internal/identity"
	"sales_visits_backend/internal/salesplans/domain"
	"sales_visits_backend/internal/salesplans/repository"
	"sales_visits_backend/internal/salesplans/transport"
	"sales_visits_backend/platform/apperr"
	"sales_visits_backend/platform/logger"
	"sales_visits_backend/platform/sanitize"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
	maxPerPage     = 100

	msgInvalidPage    = "page must be greater than 0"
	msgInvalidPerPage = "per_page must be between 1 and 100"
	msgCreateFailed   = "error creating sales plan"
	msgListFailed     = "error listing sales plans"
	msgDeleteFailed   = "error deleting sales plans"
)

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context, plan *domain.Plan) (*domain.Plan, error)
	List(ctx context.Context, params repository.ListParams) ([]domain.Plan, int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Service provides business logic for sales plans.
type Service struct {
	store     Store
	directory identity.Directory
	log       *logger.Logger
}

// New creates a new sales plans service.
func New(store Store, directory identity.Directory, log *logger.Logger) *Service {
	return &Service{store: store, directory: directory, log: log}
}

// Create validates the request, confirms the client exists and stores the plan.
func (s *Service) Create(ctx context.Context, req transport.CreatePlanRequest) (*transport.PlanResponse, error) {
	if !s.directory.Exists(ctx, req.ClientID) {
		return nil, apperr.Unprocessable(fmt.Sprintf("client with id %s does not exist", req.ClientID))
	}

	startDate, err := domain.ParseTimestamp(req.StartDate)
	if err != nil {
		return nil, apperr.Unprocessable(err.Error())
	}
	endDate, err := domain.ParseTimestamp(req.EndDate)
	if err != nil {
		return nil, apperr.Unprocessable(err.Error())
	}

	plan := &domain.Plan{
		Name:       strings.TrimSpace(req.Name),
		StartDate:  startDate,
		EndDate:    endDate,
		ClientID:   req.ClientID,
		SellerID:   req.SellerID,
		Objectives: sanitize.Text(req.Objectives),
	}
	if req.TargetRevenue != nil {
		plan.TargetRevenue = *req.TargetRevenue
	}
	if err := plan.Validate(); err != nil {
		return nil, apperr.Unprocessable(err.Error())
	}

	created, err := s.store.Create(ctx, plan)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePlanName) {
			return nil, apperr.Unprocessable(fmt.Sprintf("a sales plan named '%s' already exists", plan.Name))
		}
		s.log.WithContext(ctx).DatabaseError("create sales plan", err)
		return nil, apperr.BusinessLogic(msgCreateFailed, err)
	}

	s.log.WithContext(ctx).Info("sales plan created", "plan_id", created.ID, "name", created.Name)
	resp := toPlanResponse(*created)
	return &resp, nil
}

// List returns one page of plans. A client_name filter is resolved to client
// ids through the identity directory; no match yields an empty page.
func (s *Service) List(ctx context.Context, req transport.ListPlansRequest) (*transport.ListPlansResponse, error) {
	page, perPage := defaultPage, defaultPerPage
	if req.Page != nil {
		page = *req.Page
	}
	if req.PerPage != nil {
		perPage = *req.PerPage
	}
	if page < 1 {
		return nil, apperr.Validation(msgInvalidPage)
	}
	if perPage < 1 || perPage > maxPerPage {
		return nil, apperr.Validation(msgInvalidPerPage)
	}

	params := repository.ListParams{
		Name:     strings.TrimSpace(req.Name),
		ClientID: strings.TrimSpace(req.ClientID),
		SellerID: strings.TrimSpace(req.SellerID),
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	}

	var err error
	if params.StartFrom, err = optionalTimestamp(req.StartDate); err != nil {
		return nil, apperr.Validation("invalid start_date: " + err.Error())
	}
	if params.EndUntil, err = optionalTimestamp(req.EndDate); err != nil {
		return nil, apperr.Validation("invalid end_date: " + err.Error())
	}

	if name := strings.TrimSpace(req.ClientName); name != "" {
		params.ClientIDs = s.directory.FindUserIDsByName(ctx, name, identity.RoleClient)
		if len(params.ClientIDs) == 0 {
			return emptyPage(page, perPage), nil
		}
	}

	plans, total, err := s.store.List(ctx, params)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("list sales plans", err)
		return nil, apperr.BusinessLogic(msgListFailed, err)
	}

	names := s.resolveNames(ctx, plans)
	items := make([]transport.PlanResponse, 0, len(plans))
	for _, p := range plans {
		item := toPlanResponse(p)
		item.ClientName = names.lookup(p.ClientID)
		if p.SellerID != nil {
			item.SellerName = names.lookup(*p.SellerID)
		}
		items = append(items, item)
	}

	return &transport.ListPlansResponse{
		Items:      items,
		Pagination: pagination(page, perPage, total),
	}, nil
}

// DeleteAll removes every plan.
func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	count, err := s.store.DeleteAll(ctx)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("delete sales plans", err)
		return 0, apperr.BusinessLogic(msgDeleteFailed, err)
	}
	s.log.WithContext(ctx).Warn("all sales plans deleted", "count", count)
	return count, nil
}

type nameIndex map[string]string

func (n nameIndex) lookup(id string) *string {
	name, ok := n[id]
	if !ok {
		return nil
	}
	return &name
}

// resolveNames fetches each distinct client and seller once. Ids whose detail
// cannot be fetched, or that carry no name, are left out.
func (s *Service) resolveNames(ctx context.Context, plans []domain.Plan) nameIndex {
	names := nameIndex{}
	seen := map[string]struct{}{}
	resolve := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		record, ok := s.directory.FetchDetail(ctx, id)
		if !ok || record.Name() == "" {
			return
		}
		names[id] = record.Name()
	}

	for _, p := range plans {
		resolve(p.ClientID)
		if p.SellerID != nil {
			resolve(*p.SellerID)
		}
	}
	return names
}

func optionalTimestamp(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := domain.ParseTimestamp(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func pagination(page, perPage, total int) transport.Pagination {
	return transport.Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}
}

func emptyPage(page, perPage int) *transport.ListPlansResponse {
	return &transport.ListPlansResponse{
		Items:      []transport.PlanResponse{},
		Pagination: pagination(page, perPage, 0),
	}
}

func toPlanResponse(p domain.Plan) transport.PlanResponse {
	return transport.PlanResponse{
		ID:            p.ID,
		Name:          p.Name,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		ClientID:      p.ClientID,
		SellerID:      p.SellerID,
		TargetRevenue: domain.RoundCents(p.TargetRevenue),
		Objectives:    p.Objectives,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
