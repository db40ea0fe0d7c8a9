package handlers

import (
	"encoding/json"
	"net/http"
)

// Envelope is the standard response shape: {success, message, data} for
// successes, {success, error, details} for failures.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Pagination echoes the paging parameters and totals of a list response.
type Pagination struct {
	Limit       int  `json:"limit"`
	Offset      int  `json:"offset"`
	TotalCount  int  `json:"totalCount"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// NewPagination builds the pagination block for a list response.
func NewPagination(limit, offset, totalCount int) Pagination {
	return Pagination{
		Limit:       limit,
		Offset:      offset,
		TotalCount:  totalCount,
		HasNext:     offset+limit < totalCount,
		HasPrevious: offset > 0,
	}
}

// WriteSuccess writes a success envelope and returns any encoding error.
func WriteSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) error {
	return writeJSON(w, statusCode, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// WriteError writes an error envelope and returns any encoding error.
func WriteError(w http.ResponseWriter, statusCode int, message, details string) error {
	return writeJSON(w, statusCode, Envelope{
		Success: false,
		Error:   message,
		Details: details,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}
