package service

import (
	"context"

	"sales_visits_backend/internal/visits/transport"
	"sales_visits_backend/platform/apperr"
)

const (
	msgVisitNotFound = "visit not found for seller"
	msgDetailFailed  = "error loading scheduled visit"
)

// Detail returns the visit with the identity record of every client that
// could be resolved. Clients whose lookup fails are left out.
func (s *Service) Detail(ctx context.Context, sellerID, visitID string) (*transport.VisitDetailResponse, error) {
	if !s.identity.Exists(ctx, sellerID) {
		return nil, apperr.NotFound(msgSellerNotFound)
	}

	visit, err := s.store.GetByOwner(ctx, visitID, sellerID)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("get scheduled visit", err)
		return nil, apperr.BusinessLogic(msgDetailFailed, err)
	}
	if visit == nil {
		return nil, apperr.NotFound(msgVisitNotFound)
	}

	memberships, err := s.store.ListClients(ctx, visit.ID)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("list scheduled visit clients", err)
		return nil, apperr.BusinessLogic(msgDetailFailed, err)
	}

	clients := make([]transport.ClientDetail, 0, len(memberships))
	for _, m := range memberships {
		record, ok := s.identity.FetchDetail(ctx, m.ClientID)
		if !ok {
			s.log.WithContext(ctx).Warn("client detail unavailable", "visit_id", visit.ID, "client_id", m.ClientID)
			continue
		}

		detail := make(transport.ClientDetail, len(record)+1)
		for k, v := range record {
			detail[k] = v
		}
		detail["visit_status"] = transport.VisitStatus{
			Status:      string(m.Status),
			Find:        m.Find,
			Filename:    m.Filename,
			FilenameURL: m.FilenameURL,
		}
		clients = append(clients, detail)
	}

	return &transport.VisitDetailResponse{
		ID:        visit.ID,
		SellerID:  visit.SellerID,
		Date:      visit.DateText(),
		Clients:   clients,
		CreatedAt: visit.CreatedAt,
		UpdatedAt: visit.UpdatedAt,
	}, nil
}
