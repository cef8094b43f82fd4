package dto

import "time"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type MeResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
	Status   string `json:"status,omitempty"`
}

type AuthTokensResponse struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	ExpiresInSec int64      `json:"expiresInSec"`
	Me           MeResponse `json:"me"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
