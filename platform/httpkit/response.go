// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"sales_visits_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the standard error envelope. Error names the category,
// Details carries the human-readable cause.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Success sends a success envelope with the given status code.
func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, SuccessResponse{Success: true, Message: message, Data: data})
}

// OK sends a 200 OK success envelope.
func OK(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusOK, message, data)
}

// Created sends a 201 Created success envelope.
func Created(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusCreated, message, data)
}

// Error sends a failure envelope with the given status code.
func Error(c *gin.Context, status int, category string, details interface{}) {
	c.JSON(status, ErrorResponse{Success: false, Error: category, Details: details})
}

// HandleError maps domain errors to HTTP responses.
// If the error carries an *apperr.Error, its Kind selects the status code and
// category. Otherwise it is reported as an internal error.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		details := domainErr.Details
		if details == nil {
			details = detailMessage(domainErr)
		}
		Error(c, domainErr.HTTPStatus(), domainErr.Category(), details)
		return true
	}

	Error(c, http.StatusInternalServerError, "internal server error", err.Error())
	return true
}

func detailMessage(e *apperr.Error) string {
	if e.Kind == apperr.KindBusinessLogic && e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}
