package http

import (
	"errors"
	"net/http"

	"perk-roulette/internal/domain"
)

var (
	// Success response
	Success = Status{Code: http.StatusOK, Message: []string{"Success"}}
	// BadRequest response
	BadRequest = Status{Code: http.StatusBadRequest, Message: []string{"Sorry, Not responding because of incorrect syntax"}}
	// NotFound response
	NotFound = Status{Code: http.StatusNotFound, Message: []string{"Sorry, Perk not found"}}
	// ConFlict response
	ConFlict = Status{Code: http.StatusConflict, Message: []string{"Sorry, Data is conflict"}}
	// Unprocessable response
	Unprocessable = Status{Code: http.StatusUnprocessableEntity, Message: []string{"Sorry, Request cannot be fulfilled"}}
	// TooManyRequests response
	TooManyRequests = Status{Code: http.StatusTooManyRequests, Message: []string{"Sorry, Too many requests"}}
	// InternalServerError response
	InternalServerError = Status{Code: http.StatusInternalServerError, Message: []string{"Internal Server Error"}}
	// ServiceUnavailable response
	ServiceUnavailable = Status{Code: http.StatusServiceUnavailable, Message: []string{"Sorry, Storage is unavailable"}}
)

// ResponseBody struct - Generic HTTP response wrapper
type ResponseBody struct {
	Status Status      `json:"status,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// Status struct
type Status struct {
	Code    int      `json:"code,omitempty"`
	Message []string `json:"message,omitempty"`
}

type (
	// HealthResponse struct
	HealthResponse struct {
		Store    string `json:"store"`
		Sessions int    `json:"sessions"`
	}

	// TitlesResponse struct - title projection of the catalog
	TitlesResponse struct {
		Titles []string `json:"titles"`
	}

	// EvictIdleResponse struct
	EvictIdleResponse struct {
		Evicted int `json:"evicted"`
	}

	// MessageRefResponse struct
	MessageRefResponse struct {
		Ref string `json:"ref"`
	}
)

// statusOf maps engine errors onto response statuses
func statusOf(err error) Status {
	var status Status
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = NotFound
	case errors.Is(err, domain.ErrInvalidUser),
		errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrInvalidBuild):
		status = BadRequest
	case errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrSessionBusy),
		errors.Is(err, domain.ErrStaleBuild),
		errors.Is(err, domain.ErrNoActiveBuild):
		status = ConFlict
	case errors.Is(err, domain.ErrInsufficientCatalog):
		status = Unprocessable
	case errors.Is(err, domain.ErrStoreUnavailable):
		return ServiceUnavailable
	default:
		return InternalServerError
	}
	status.Message = []string{err.Error()}
	return status
}
