package api

import "github.com/roach88/flaggraph/internal/model"

// CreateFlagRequest is the body of POST /flags.
type CreateFlagRequest struct {
	// Name is the new flag's name.
	Name string `json:"name" binding:"required,flagname"`

	// Dependencies names the flags the new flag depends on. Repeats are
	// rejected.
	Dependencies []string `json:"dependencies" binding:"omitempty,max=256,unique,dive,flagname"`
}

// ToggleQuery is the query string of POST /flags/:name/toggle.
type ToggleQuery struct {
	Enable *bool `form:"enable" binding:"required"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code.
	Code string `json:"code"`

	// Missing lists offending dependency names, when there are any.
	Missing []string `json:"missing_dependencies,omitempty"`

	// Dependency names the dependency that would close a cycle.
	Dependency string `json:"dependency,omitempty"`
}

// HistoryResponse is the body of GET /flags/:name/history.
type HistoryResponse struct {
	Flag    string              `json:"flag"`
	Records []model.AuditRecord `json:"records"`
}

// ListResponse is the body of GET /flags.
type ListResponse struct {
	Flags []model.FlagView `json:"flags"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}
