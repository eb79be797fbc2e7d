package dto

import "time"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse returns the bearer token.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// HealthResponse reports process and database health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}
