// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/formpost/formpost/internal/model"

// CredentialsRequest is the body of register and login requests.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	SiteKey string `json:"siteKey"`
}

// LoginResponse carries a session token and the owner's site key.
type LoginResponse struct {
	Token   string `json:"token"`
	SiteKey string `json:"siteKey"`
}

// SuccessResponse acknowledges a write.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// SubmissionListResponse lists a tenant's submissions, newest first.
type SubmissionListResponse struct {
	Submissions []*model.Submission `json:"submissions"`
}

// ThemeRequest replaces an owner's theme. A missing theme clears it.
type ThemeRequest struct {
	Theme model.Fields `json:"theme"`
}

// ThemeResponse carries a theme mapping.
type ThemeResponse struct {
	Theme model.Fields `json:"theme"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// NotifyFailureResponse reports a submission that was stored but whose
// notification could not be delivered.
type NotifyFailureResponse struct {
	ErrorResponse
	Stored       bool   `json:"stored"`
	SubmissionID string `json:"submissionId"`
}
