package models

import "time"

// Session is one admin login. The store keys it by token; the token itself
// is never part of the stored value.
type Session struct {
	CreatedAt time.Time `json:"createdAt"`
	Device    string    `json:"device"`
	ClientIP  string    `json:"clientIp"`
}

// LoginRequest is the body of POST /api/admin/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse returns the session token on success.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// LogoutResponse acknowledges a logout. Logout always succeeds.
type LogoutResponse struct {
	Success bool `json:"success"`
}

// StatusResponse reports whether the presented token is a live session.
type StatusResponse struct {
	IsAuthenticated bool `json:"isAuthenticated"`
}
