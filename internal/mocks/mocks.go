// Package mocks provides testify-based mock implementations of the gateway
// client and the page views used by the controllers.
// Views remember the registered handlers so tests can "submit" forms.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/linkshrink/internal/controller"
	"github.com/patric-chuzhbe/linkshrink/internal/models"
)

// GatewayMock mocks every gateway endpoint.
type GatewayMock struct {
	mock.Mock
}

func (m *GatewayMock) CreateUser(ctx context.Context, credentials models.Credentials) error {
	args := m.Called(ctx, credentials)
	return args.Error(0)
}

func (m *GatewayMock) IssueToken(ctx context.Context, credentials models.Credentials) (string, error) {
	args := m.Called(ctx, credentials)
	return args.String(0), args.Error(1)
}

func (m *GatewayMock) ListLinks(ctx context.Context, token string) (models.Links, error) {
	args := m.Called(ctx, token)
	links, _ := args.Get(0).(models.Links)
	return links, args.Error(1)
}

func (m *GatewayMock) CreateLink(ctx context.Context, token, originalURL string) error {
	args := m.Called(ctx, token, originalURL)
	return args.Error(0)
}

// AuthViewMock mocks the login page.
type AuthViewMock struct {
	mock.Mock

	SignupHandler controller.CredentialsHandler
	LoginHandler  controller.CredentialsHandler
}

func (m *AuthViewMock) ShowMessage(message models.Message) {
	m.Called(message)
}

func (m *AuthViewMock) Navigate(page string) {
	m.Called(page)
}

func (m *AuthViewMock) ResetSignupForm() {
	m.Called()
}

func (m *AuthViewMock) OnSignup(handler controller.CredentialsHandler) {
	m.SignupHandler = handler
}

func (m *AuthViewMock) OnLogin(handler controller.CredentialsHandler) {
	m.LoginHandler = handler
}

// DashboardViewMock mocks the dashboard page.
type DashboardViewMock struct {
	mock.Mock

	CreateLinkHandler controller.LinkHandler
	LogoutHandler     controller.ActionHandler
}

func (m *DashboardViewMock) ShowMessage(message models.Message) {
	m.Called(message)
}

func (m *DashboardViewMock) Navigate(page string) {
	m.Called(page)
}

func (m *DashboardViewMock) RenderLinks(links models.Links) {
	m.Called(links)
}

func (m *DashboardViewMock) ResetCreateLinkForm() {
	m.Called()
}

func (m *DashboardViewMock) OnCreateLink(handler controller.LinkHandler) {
	m.CreateLinkHandler = handler
}

func (m *DashboardViewMock) OnLogout(handler controller.ActionHandler) {
	m.LogoutHandler = handler
}
