package models

import "encoding/json"

// Auth API types
type SendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type CompleteRegistrationRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
	DeviceID string `json:"deviceId" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// MessageResponse covers send-code, verify-email and resend-code.
type MessageResponse struct {
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// MeResponse is the body of GET /auth/me. Usage is nil when the server omits it.
type MeResponse struct {
	User  *User  `json:"user"`
	Usage *Usage `json:"usage,omitempty"`
}

// AI API types
type Message struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	Model       string            `json:"model" validate:"required"`
	Messages    []Message         `json:"messages" validate:"required,min=1,dive"`
	Temperature *float64          `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   *int              `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	Stream      bool              `json:"stream,omitempty"`
	Tools       []json.RawMessage `json:"tools,omitempty"`
}

type ModelsResponse struct {
	Models []string `json:"models"`
}

// Billing API types
type PaymentRequest struct {
	Tier      Tier   `json:"tier" validate:"required,oneof=pro pro_plus"`
	ReturnURL string `json:"returnUrl"`
}

type PaymentResponse struct {
	PaymentID       string  `json:"paymentId"`
	ConfirmationURL string  `json:"confirmationUrl"`
	Amount          float64 `json:"amount"`
}

type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentSucceeded PaymentState = "succeeded"
	PaymentCanceled  PaymentState = "canceled"
)

type PaymentStatus struct {
	Status PaymentState `json:"status"`
	Paid   bool         `json:"paid"`
}

// Error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
