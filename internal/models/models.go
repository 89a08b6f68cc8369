package models

// Page addresses the controllers navigate between.
const (
	PageLogin     = "/index.html"
	PageDashboard = "/dashboard.html"
)

// AccessTokenKey is the session key holding the bearer token.
const AccessTokenKey = "accessToken"

type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

type CreateLinkRequest struct {
	OriginalURL string `json:"original_url" validate:"required"`
}

type Link struct {
	ShortURL    string `json:"short_url"`
	OriginalURL string `json:"original_url"`
}

type Links []Link

type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

type Message struct {
	Text string
	Kind MessageKind
}
