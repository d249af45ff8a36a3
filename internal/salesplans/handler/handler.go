package handler

import (
	"context"
	"net/http"

	"sales_visits_backend/internal/salesplans/transport"
	"sales_visits_backend/platform/httpkit"
	"sales_visits_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgValidationError = "validation error"
	msgJSONRequired    = "a valid JSON body is required"

	msgPlanCreated  = "sales plan created successfully"
	msgPlansListed  = "sales plans retrieved successfully"
	msgPlansDeleted = "all sales plans have been deleted"
)

// PlanService is the part of the sales plan service the handler calls.
type PlanService interface {
	Create(ctx context.Context, req transport.CreatePlanRequest) (*transport.PlanResponse, error)
	List(ctx context.Context, req transport.ListPlansRequest) (*transport.ListPlansResponse, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Handler handles HTTP requests for sales plans
type Handler struct {
	svc PlanService
	val *validator.Validator
}

// New creates a new sales plans handler
func New(svc PlanService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the sales plan routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/create", h.Create)
	rg.GET("", h.List)
	rg.DELETE("/delete-all", h.DeleteAll)
	rg.GET("/ping", h.Ping)
}

// Create handles POST /sales-plan/create
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusUnprocessableEntity, msgValidationError, msgJSONRequired)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusUnprocessableEntity, msgValidationError, validator.Describe(err))
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, msgPlanCreated, result)
}

// List handles GET /sales-plan
func (h *Handler) List(c *gin.Context) {
	var req transport.ListPlansRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationError, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, msgPlansListed, result)
}

// DeleteAll handles DELETE /sales-plan/delete-all
func (h *Handler) DeleteAll(c *gin.Context) {
	count, err := h.svc.DeleteAll(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, msgPlansDeleted, gin.H{"deleted": count})
}

// Ping handles GET /sales-plan/ping
func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
