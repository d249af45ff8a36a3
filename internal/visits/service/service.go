// Package service orchestrates the scheduled-visit lifecycle: creation,
// listing, detail and per-client completion. It is the only layer that
// classifies failures into validation and business-logic errors.
package service

import (
	"context"
	"io"
	"time"

	"sales_visits_backend/internal/identity"
	"sales_visits_backend/internal/scheduler"
	"sales_visits_backend/internal/visits/domain"
	"sales_visits_backend/internal/visits/repository"
	"sales_visits_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context, visit *domain.Visit) (*domain.Visit, error)
	GetByOwner(ctx context.Context, visitID, sellerID string) (*domain.Visit, error)
	ListBySeller(ctx context.Context, sellerID string, date *time.Time) ([]repository.VisitSummary, error)
	GetClientMembership(ctx context.Context, visitID, clientID string) (*domain.VisitClient, error)
	UpdateClientFields(ctx context.Context, visitID, clientID string, update repository.ClientUpdate) (bool, error)
	ListClients(ctx context.Context, visitID string) ([]domain.VisitClient, error)
}

// IdentityChecker confirms sellers and clients against the identity service.
type IdentityChecker interface {
	Exists(ctx context.Context, userID string) bool
	FetchDetail(ctx context.Context, userID string) (identity.Record, bool)
}

// ObjectStore receives evidence files.
type ObjectStore interface {
	Upload(ctx context.Context, reader io.Reader, size int64, name string) (string, error)
	MaxUploadSize() int64
}

// CleanupScheduler enqueues removal of objects orphaned by a failed update.
type CleanupScheduler interface {
	ScheduleOrphanCleanup(ctx context.Context, payload scheduler.OrphanObjectPayload) error
}

// Service provides business logic for scheduled visits.
type Service struct {
	store    Store
	identity IdentityChecker
	objects  ObjectStore
	cleanup  CleanupScheduler
	newID    func() string
	token    func() string
	log      *logger.Logger
}

// New creates a new scheduled visits service.
func New(store Store, identity IdentityChecker, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		identity: identity,
		newID:    uuid.NewString,
		token:    randomToken,
		log:      log,
	}
}

// SetObjectStore enables file attachments on completion updates.
func (s *Service) SetObjectStore(objects ObjectStore) {
	s.objects = objects
}

// SetCleanupScheduler enables background removal of orphaned uploads.
func (s *Service) SetCleanupScheduler(cleanup CleanupScheduler) {
	s.cleanup = cleanup
}

// SetIDFactory overrides visit id generation.
func (s *Service) SetIDFactory(newID func() string) {
	s.newID = newID
}
