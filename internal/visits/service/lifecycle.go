package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sales_visits_backend/internal/visits/domain"
	"sales_visits_backend/internal/visits/repository"
	"sales_visits_backend/internal/visits/transport"
	"sales_visits_backend/platform/apperr"
)

const (
	msgSellerNotFound    = "seller does not exist"
	msgInvalidDate       = "invalid date format, expected DD-MM-YYYY"
	msgClientsRequired   = "clients are required and must not be empty"
	msgClientIDRequired  = "client_id is required for every client"
	msgCreateFailed      = "error creating scheduled visit"
	msgListFailed        = "error listing scheduled visits"
	msgDuplicateVisitFmt = "a scheduled visit already exists for seller %s on %s"
)

// Create validates and persists a new visit for sellerID.
func (s *Service) Create(ctx context.Context, sellerID string, req transport.CreateVisitRequest) (*transport.VisitResponse, error) {
	if !s.identity.Exists(ctx, sellerID) {
		return nil, apperr.Validation(msgSellerNotFound)
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return nil, apperr.Validation(msgInvalidDate)
	}

	if len(req.Clients) == 0 {
		return nil, apperr.Validation(msgClientsRequired)
	}

	entries := make([]domain.ClientEntry, 0, len(req.Clients))
	for _, ref := range req.Clients {
		if ref.ClientID == nil || *ref.ClientID == "" {
			return nil, apperr.Validation(msgClientIDRequired)
		}
		if !s.identity.Exists(ctx, *ref.ClientID) {
			return nil, apperr.Validation("client does not exist: " + *ref.ClientID)
		}
		entries = append(entries, domain.ClientRef(domain.NewVisitClient(*ref.ClientID)))
	}

	draft := domain.Draft{
		SellerID: sellerID,
		Date:     domain.CalendarDate(date),
		Clients:  domain.Clients(entries...),
	}
	visit, err := draft.Build(s.newID)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	created, err := s.store.Create(ctx, visit)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateVisit) {
			return nil, apperr.Validation(fmt.Sprintf(msgDuplicateVisitFmt, sellerID, domain.FormatDate(date)))
		}
		s.log.WithContext(ctx).DatabaseError("create scheduled visit", err)
		return nil, apperr.BusinessLogic(msgCreateFailed, err)
	}

	s.log.WithContext(ctx).Info("scheduled visit created",
		"visit_id", created.ID,
		"seller_id", sellerID,
		"date", created.DateText(),
		"clients", len(created.Clients),
	)
	return toVisitResponse(created), nil
}

// List returns the seller's visit summaries, optionally for one DD-MM-YYYY date.
func (s *Service) List(ctx context.Context, sellerID, dateFilter string) (*transport.ListVisitsResponse, error) {
	if !s.identity.Exists(ctx, sellerID) {
		return nil, apperr.Validation(msgSellerNotFound)
	}

	var filter *time.Time
	if dateFilter != "" {
		date, err := domain.ParseDate(dateFilter)
		if err != nil {
			return nil, apperr.Validation(msgInvalidDate)
		}
		filter = &date
	}

	summaries, err := s.store.ListBySeller(ctx, sellerID, filter)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("list scheduled visits", err)
		return nil, apperr.BusinessLogic(msgListFailed, err)
	}

	items := make([]transport.VisitSummary, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, transport.VisitSummary{
			ID:           summary.Visit.ID,
			Date:         summary.Visit.DateText(),
			CountClients: summary.ClientCount,
		})
	}
	return &transport.ListVisitsResponse{Items: items}, nil
}

func toVisitResponse(v *domain.Visit) *transport.VisitResponse {
	clients := make([]transport.VisitClientResponse, 0, len(v.Clients))
	for _, c := range v.Clients {
		clients = append(clients, transport.VisitClientResponse{
			ClientID:    c.ClientID,
			Status:      string(c.Status),
			Find:        c.Find,
			Filename:    c.Filename,
			FilenameURL: c.FilenameURL,
		})
	}
	return &transport.VisitResponse{
		ID:        v.ID,
		SellerID:  v.SellerID,
		Date:      v.DateText(),
		Clients:   clients,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
