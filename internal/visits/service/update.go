package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"sales_visits_backend/internal/scheduler"
	"sales_visits_backend/internal/visits/domain"
	"sales_visits_backend/internal/visits/repository"
	"sales_visits_backend/internal/visits/transport"
	"sales_visits_backend/platform/apperr"
	"sales_visits_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgFindRequired     = "find is required"
	msgClientNotInVisit = "client not in visit"
	msgUpdateFailed     = "error updating visit client"
	msgNotUpdated       = "could not update visit client"
	msgStorageDisabled  = "file storage is not configured"
	msgFileTooLargeFmt  = "file exceeds the maximum allowed size of %d bytes"

	fallbackExtension = "bin"
)

// Attachment is an evidence file sent with a completion update.
type Attachment struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// CompleteInput marks one client of a visit as completed.
type CompleteInput struct {
	SellerID string
	VisitID  string
	ClientID string
	Find     string
	File     *Attachment
}

// CompleteClient records the visit outcome for a client and sets it COMPLETED.
// Re-running it overwrites the notes and attachment; an update without a file
// clears the previous one. The upload happens before
// the row update and outside its transaction; an upload left behind by a
// failed update is handed to the cleanup scheduler when one is configured.
func (s *Service) CompleteClient(ctx context.Context, in CompleteInput) (*transport.UpdateClientResponse, error) {
	find := sanitize.Text(in.Find)
	if find == "" {
		return nil, apperr.Validation(msgFindRequired)
	}
	if in.File != nil && s.objects != nil && in.File.Size > s.objects.MaxUploadSize() {
		return nil, apperr.Validation(fmt.Sprintf(msgFileTooLargeFmt, s.objects.MaxUploadSize()))
	}

	visit, err := s.store.GetByOwner(ctx, in.VisitID, in.SellerID)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("get scheduled visit", err)
		return nil, apperr.BusinessLogic(msgUpdateFailed, err)
	}
	if visit == nil {
		return nil, apperr.NotFound(msgVisitNotFound)
	}

	membership, err := s.store.GetClientMembership(ctx, in.VisitID, in.ClientID)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("get visit client", err)
		return nil, apperr.BusinessLogic(msgUpdateFailed, err)
	}
	if membership == nil {
		return nil, apperr.NotFound(msgClientNotInVisit)
	}

	status := domain.StatusCompleted
	update := repository.ClientUpdate{Status: &status, Find: &find, ClearFile: true}

	var filename, fileURL *string
	if in.File != nil {
		if s.objects == nil {
			return nil, apperr.BusinessLogic(msgStorageDisabled, nil)
		}
		name := s.objectName(in.File.Name)
		url, err := s.objects.Upload(ctx, in.File.Reader, in.File.Size, name)
		if err != nil {
			return nil, apperr.BusinessLogic("error uploading file", err)
		}
		filename, fileURL = &name, &url
		update.Filename, update.FilenameURL = filename, fileURL
	}

	updated, err := s.store.UpdateClientFields(ctx, in.VisitID, in.ClientID, update)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("update visit client", err)
		s.orphaned(ctx, in, filename)
		return nil, apperr.BusinessLogic(msgUpdateFailed, err)
	}
	if !updated {
		s.orphaned(ctx, in, filename)
		return nil, apperr.BusinessLogic(msgNotUpdated, nil)
	}

	s.log.WithContext(ctx).Info("visit client completed",
		"visit_id", in.VisitID,
		"client_id", in.ClientID,
		"attachment", filename != nil,
	)

	return &transport.UpdateClientResponse{
		VisitID:     in.VisitID,
		ClientID:    in.ClientID,
		Status:      string(domain.StatusCompleted),
		Find:        find,
		Filename:    filename,
		FilenameURL: fileURL,
	}, nil
}

// orphaned reports an uploaded object that no row references.
func (s *Service) orphaned(ctx context.Context, in CompleteInput, filename *string) {
	if filename == nil {
		return
	}

	log := s.log.WithContext(ctx)
	log.Warn("uploaded object orphaned by failed update", "object", *filename, "visit_id", in.VisitID, "client_id", in.ClientID)

	if s.cleanup == nil {
		return
	}
	err := s.cleanup.ScheduleOrphanCleanup(ctx, scheduler.OrphanObjectPayload{
		ObjectName: *filename,
		VisitID:    in.VisitID,
		ClientID:   in.ClientID,
	})
	if err != nil {
		log.Error("failed to schedule orphan cleanup", "object", *filename, "error", err)
	}
}

// objectName inserts a random token between base name and extension:
// "report.pdf" becomes "report-<32 hex>.pdf".
func (s *Service) objectName(original string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(original), "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}

	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = fallbackExtension
	}
	if base == "" {
		base = "file"
	}
	return base + "-" + s.token() + "." + ext
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
