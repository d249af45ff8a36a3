package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sales_visits_backend/internal/salesplans/transport"
	"sales_visits_backend/platform/apperr"
	"sales_visits_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubService struct {
	created *transport.CreatePlanRequest
	listReq transport.ListPlansRequest
	err     error
	deleted int64
}

func (s *stubService) Create(_ context.Context, req transport.CreatePlanRequest) (*transport.PlanResponse, error) {
	s.created = &req
	if s.err != nil {
		return nil, s.err
	}
	return &transport.PlanResponse{ID: 1, Name: req.Name, ClientID: req.ClientID}, nil
}

func (s *stubService) List(_ context.Context, req transport.ListPlansRequest) (*transport.ListPlansResponse, error) {
	s.listReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &transport.ListPlansResponse{Items: []transport.PlanResponse{}, Pagination: transport.Pagination{Page: 1, PerPage: 10}}, nil
}

func (s *stubService) DeleteAll(_ context.Context) (int64, error) {
	return s.deleted, s.err
}

func newEngine(svc PlanService) *gin.Engine {
	engine := gin.New()
	New(svc, validator.New()).RegisterRoutes(engine.Group("/sales-plan"))
	return engine
}

func do(engine *gin.Engine, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	var resp map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

const validBody = `{
	"name": "Plan Norte",
	"start_date": "2025-01-01T00:00:00Z",
	"end_date": "2025-03-31T00:00:00Z",
	"client_id": "a1b2c3d4-0000-4000-8000-00000000000a",
	"target_revenue": 0
}`

func TestCreateReturns201(t *testing.T) {
	svc := &stubService{}
	rec, resp := do(newEngine(svc), http.MethodPost, "/sales-plan/create", validBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "sales plan created successfully", resp["message"])
	require.NotNil(t, svc.created)
	require.NotNil(t, svc.created.TargetRevenue)
	assert.Zero(t, *svc.created.TargetRevenue)
}

func TestCreateMissingFieldIs422(t *testing.T) {
	svc := &stubService{}
	rec, resp := do(newEngine(svc), http.MethodPost, "/sales-plan/create", `{"name":"Plan Norte","start_date":"2025-01-01","end_date":"2025-02-01","client_id":"a1b2c3d4-0000-4000-8000-00000000000a"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "field 'target_revenue' is required", resp["details"])
	assert.Nil(t, svc.created)
}

func TestCreateInvalidJSONIs422(t *testing.T) {
	rec, resp := do(newEngine(&stubService{}), http.MethodPost, "/sales-plan/create", `not json`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "a valid JSON body is required", resp["details"])
}

func TestCreateMapsServiceErrors(t *testing.T) {
	svc := &stubService{err: apperr.Unprocessable("a sales plan named 'Plan Norte' already exists")}
	rec, resp := do(newEngine(svc), http.MethodPost, "/sales-plan/create", validBody)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation error", resp["error"])

	svc.err = apperr.BusinessLogic("error creating sales plan", nil)
	rec, _ = do(newEngine(svc), http.MethodPost, "/sales-plan/create", validBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListBindsQuery(t *testing.T) {
	svc := &stubService{}
	rec, resp := do(newEngine(svc), http.MethodGet, "/sales-plan?page=2&per_page=5&client_name=sol&name=norte", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["success"])
	require.NotNil(t, svc.listReq.Page)
	assert.Equal(t, 2, *svc.listReq.Page)
	assert.Equal(t, 5, *svc.listReq.PerPage)
	assert.Equal(t, "sol", svc.listReq.ClientName)
	assert.Equal(t, "norte", svc.listReq.Name)
}

func TestListRejectsNonNumericPage(t *testing.T) {
	rec, _ := do(newEngine(&stubService{}), http.MethodGet, "/sales-plan?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMapsValidation(t *testing.T) {
	svc := &stubService{err: apperr.Validation("per_page must be between 1 and 100")}
	rec, resp := do(newEngine(svc), http.MethodGet, "/sales-plan?per_page=500", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "per_page must be between 1 and 100", resp["details"])
}

func TestDeleteAllAndPing(t *testing.T) {
	svc := &stubService{deleted: 4}
	rec, resp := do(newEngine(svc), http.MethodDelete, "/sales-plan/delete-all", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), resp["data"].(map[string]interface{})["deleted"])

	rec, _ = do(newEngine(svc), http.MethodGet, "/sales-plan/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}
