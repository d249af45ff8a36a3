// Package transport defines the request and response bodies of the sales plan endpoints.
package transport

import "time"

// CreatePlanRequest is the body of POST /sales-plan/create.
type CreatePlanRequest struct {
	Name          string   `json:"name" validate:"required,max=255"`
	StartDate     string   `json:"start_date" validate:"required"`
	EndDate       string   `json:"end_date" validate:"required"`
	ClientID      string   `json:"client_id" validate:"required"`
	SellerID      *string  `json:"seller_id" validate:"omitempty,uuid_canonical"`
	TargetRevenue *float64 `json:"target_revenue" validate:"required"`
	Objectives    string   `json:"objectives"`
}

// ListPlansRequest carries the query string of GET /sales-plan.
type ListPlansRequest struct {
	Page       *int   `form:"page"`
	PerPage    *int   `form:"per_page"`
	Name       string `form:"name"`
	ClientID   string `form:"client_id"`
	ClientName string `form:"client_name"`
	SellerID   string `form:"seller_id"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
}

// PlanResponse is a sales plan as returned by the API.
type PlanResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	ClientID      string    `json:"client_id"`
	SellerID      *string   `json:"seller_id"`
	TargetRevenue float64   `json:"target_revenue"`
	Objectives    string    `json:"objectives"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ClientName    *string   `json:"client_name,omitempty"`
	SellerName    *string   `json:"seller_name,omitempty"`
}

// Pagination describes the returned page.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ListPlansResponse is the body of GET /sales-plan.
type ListPlansResponse struct {
	Items      []PlanResponse `json:"items"`
	Pagination Pagination     `json:"pagination"`
}
