package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"sales_visits_backend/internal/visits/service"
	"sales_visits_backend/internal/visits/transport"
	"sales_visits_backend/platform/httpkit"
	"sales_visits_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest  = "invalid request"
	msgValidationError = "validation error"

	msgVisitCreated  = "scheduled visit created successfully"
	msgVisitsListed  = "scheduled visits retrieved successfully"
	msgVisitDetail   = "visit detail retrieved successfully"
	msgClientUpdated = "visit client updated successfully"

	// multipartOverhead leaves room for boundaries and the find field.
	multipartOverhead = 1 << 20
)

// VisitService is the part of the visit service the handler calls.
type VisitService interface {
	Create(ctx context.Context, sellerID string, req transport.CreateVisitRequest) (*transport.VisitResponse, error)
	List(ctx context.Context, sellerID, dateFilter string) (*transport.ListVisitsResponse, error)
	Detail(ctx context.Context, sellerID, visitID string) (*transport.VisitDetailResponse, error)
	CompleteClient(ctx context.Context, in service.CompleteInput) (*transport.UpdateClientResponse, error)
}

// Handler handles HTTP requests for scheduled visits
type Handler struct {
	svc       VisitService
	maxUpload int64
}

// New creates a new scheduled visits handler
func New(svc VisitService, maxUpload int64) *Handler {
	return &Handler{svc: svc, maxUpload: maxUpload}
}

// RegisterRoutes registers the scheduled visit routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	sellers := rg.Group("/sellers/:seller_id", sellerContext)
	sellers.POST("/scheduled-visits", h.Create)
	sellers.GET("/scheduled-visits", h.List)
	sellers.GET("/route/:visit_id", h.Detail)
	sellers.POST("/route/:visit_id/client/:client_id", h.UpdateClient)
}

// sellerContext tags the request context with the addressed seller for logging.
func sellerContext(c *gin.Context) {
	ctx := context.WithValue(c.Request.Context(), logger.SellerIDKey, c.Param("seller_id"))
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// Create handles POST /sellers/:seller_id/scheduled-visits
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), c.Param("seller_id"), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, msgVisitCreated, result)
}

// List handles GET /sellers/:seller_id/scheduled-visits
func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context(), c.Param("seller_id"), strings.TrimSpace(c.Query("date")))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, msgVisitsListed, result)
}

// Detail handles GET /sellers/:seller_id/route/:visit_id
func (h *Handler) Detail(c *gin.Context) {
	result, err := h.svc.Detail(c.Request.Context(), c.Param("seller_id"), c.Param("visit_id"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, msgVisitDetail, result)
}

// UpdateClient handles POST /sellers/:seller_id/route/:visit_id/client/:client_id.
// It accepts multipart/form-data with a find field and an optional file, or a
// JSON body carrying find only.
func (h *Handler) UpdateClient(c *gin.Context) {
	in := service.CompleteInput{
		SellerID: c.Param("seller_id"),
		VisitID:  c.Param("visit_id"),
		ClientID: c.Param("client_id"),
	}

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		file, ok := h.readMultipart(c, &in)
		if !ok {
			return
		}
		if file != nil {
			defer file.Close()
		}
	} else {
		var req transport.UpdateClientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
			return
		}
		in.Find = req.Find
	}

	result, err := h.svc.CompleteClient(c.Request.Context(), in)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, msgClientUpdated, result)
}

// readMultipart fills find and the optional attachment from a multipart body.
// The returned file must be closed by the caller.
func (h *Handler) readMultipart(c *gin.Context, in *service.CompleteInput) (multipart.File, bool) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpkit.Error(c, http.StatusBadRequest, msgValidationError, h.tooLargeMessage())
			return nil, false
		}
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return nil, false
	}

	if values := form.Value["find"]; len(values) > 0 {
		in.Find = values[0]
	}

	headers := form.File["file"]
	if len(headers) == 0 {
		return nil, true
	}
	header := headers[0]
	if h.maxUpload > 0 && header.Size > h.maxUpload {
		httpkit.Error(c, http.StatusBadRequest, msgValidationError, h.tooLargeMessage())
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return nil, false
	}
	in.File = &service.Attachment{Name: header.Filename, Size: header.Size, Reader: file}
	return file, true
}

func (h *Handler) tooLargeMessage() string {
	return fmt.Sprintf("file exceeds the maximum allowed size of %d bytes", h.maxUpload)
}
