package controller

import (
	"context"

	"github.com/patric-chuzhbe/linkshrink/internal/models"
)

// CredentialsHandler receives a submitted signup or login form.
type CredentialsHandler func(ctx context.Context, email, password string)

// LinkHandler receives a submitted create-link form.
type LinkHandler func(ctx context.Context, originalURL string)

// ActionHandler receives a plain button press.
type ActionHandler func(ctx context.Context)

// AuthView is the unauthenticated page: signup and login forms sharing one
// message area.
type AuthView interface {
	ShowMessage(message models.Message)
	Navigate(page string)
	ResetSignupForm()
	OnSignup(handler CredentialsHandler)
	OnLogin(handler CredentialsHandler)
}

// DashboardView is the authenticated page with the link list.
type DashboardView interface {
	ShowMessage(message models.Message)
	Navigate(page string)
	// RenderLinks replaces whatever list is displayed with links.
	RenderLinks(links models.Links)
	ResetCreateLinkForm()
	OnCreateLink(handler LinkHandler)
	OnLogout(handler ActionHandler)
}
