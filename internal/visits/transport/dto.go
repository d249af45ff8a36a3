// Package transport defines the request and response bodies of the
// scheduled-visit endpoints.
package transport

import "time"

// ClientRef is one entry of the create request's client list.
type ClientRef struct {
	ClientID *string `json:"client_id"`
}

// CreateVisitRequest is the body of POST /sellers/{seller_id}/scheduled-visits.
type CreateVisitRequest struct {
	Date    string      `json:"date"`
	Clients []ClientRef `json:"clients"`
}

// VisitClientResponse is a membership as returned after creation.
type VisitClientResponse struct {
	ClientID    string  `json:"client_id"`
	Status      string  `json:"status"`
	Find        *string `json:"find"`
	Filename    *string `json:"filename"`
	FilenameURL *string `json:"filename_url"`
}

// VisitResponse is a created visit.
type VisitResponse struct {
	ID        string                `json:"id"`
	SellerID  string                `json:"seller_id"`
	Date      string                `json:"date"`
	Clients   []VisitClientResponse `json:"clients"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// VisitSummary is one row of the visit listing.
type VisitSummary struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	CountClients int    `json:"count_clients"`
}

// ListVisitsResponse is the body of GET /sellers/{seller_id}/scheduled-visits.
type ListVisitsResponse struct {
	Items []VisitSummary `json:"items"`
}

// VisitStatus is the completion record attached to each resolved client.
type VisitStatus struct {
	Status      string  `json:"status"`
	Find        *string `json:"find"`
	Filename    *string `json:"filename"`
	FilenameURL *string `json:"filename_url"`
}

// ClientDetail is the identity record of a client plus its "visit_status".
type ClientDetail map[string]interface{}

// VisitDetailResponse is the body of GET /sellers/{seller_id}/route/{visit_id}.
type VisitDetailResponse struct {
	ID        string         `json:"id"`
	SellerID  string         `json:"seller_id"`
	Date      string         `json:"date"`
	Clients   []ClientDetail `json:"clients"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// UpdateClientRequest is the JSON form of the completion update.
type UpdateClientRequest struct {
	Find string `json:"find" form:"find"`
}

// UpdateClientResponse is the result of marking a client visit completed.
type UpdateClientResponse struct {
	VisitID     string  `json:"visit_id"`
	ClientID    string  `json:"client_id"`
	Status      string  `json:"status"`
	Find        string  `json:"find"`
	Filename    *string `json:"filename"`
	FilenameURL *string `json:"filename_url"`
}
