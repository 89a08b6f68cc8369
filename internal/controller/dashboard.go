package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/linkshrink/internal/gateway"
	"github.com/patric-chuzhbe/linkshrink/internal/logger"
	"github.com/patric-chuzhbe/linkshrink/internal/models"
)

type linksAPI interface {
	ListLinks(ctx context.Context, token string) (models.Links, error)
	CreateLink(ctx context.Context, token, originalURL string) error
}

// Dashboard guards the authenticated page and manages its link list.
type Dashboard struct {
	api     linksAPI
	session tokenKeeper
	view    DashboardView
}

func NewDashboard(api linksAPI, session tokenKeeper, view DashboardView) *Dashboard {
	return &Dashboard{
		api:     api,
		session: session,
		view:    view,
	}
}

// Load is the page load: the auth guard, handler registration and the
// first list fetch. It reports false when the guard sent the user away,
// in which case nothing else happened.
func (d *Dashboard) Load(ctx context.Context) bool {
	if !d.Guard(ctx) {
		return false
	}

	d.view.OnCreateLink(d.SubmitCreateLink)
	d.view.OnLogout(d.Logout)
	d.FetchLinks(ctx)

	return true
}

// Guard sends the user to the login page when no token is stored.
func (d *Dashboard) Guard(ctx context.Context) bool {
	_, ok := d.token(ctx)
	if !ok {
		d.view.Navigate(models.PageLogin)
	}

	return ok
}

// FetchLinks reloads the whole list. A 401 ends the session; any other
// failure leaves the displayed list as it was.
func (d *Dashboard) FetchLinks(ctx context.Context) {
	token, ok := d.token(ctx)
	if !ok {
		d.view.Navigate(models.PageLogin)
		return
	}

	links, err := d.api.ListLinks(ctx, token)
	if gateway.IsStatus(err, http.StatusUnauthorized) {
		d.endSession(ctx)
		return
	}
	if err != nil {
		logger.Log.Debugln("Error calling the `d.api.ListLinks()`:", zap.Error(err))
		d.view.ShowMessage(errorMessage(MsgFetchLinksFailed))
		return
	}

	d.view.RenderLinks(links)
}

// SubmitCreateLink shortens originalURL and then refetches the list
// instead of inserting the new entry locally.
func (d *Dashboard) SubmitCreateLink(ctx context.Context, originalURL string) {
	request := models.CreateLinkRequest{OriginalURL: originalURL}
	if err := validate.Struct(request); err != nil {
		d.view.ShowMessage(errorMessage(MsgRequiredFields))
		return
	}

	token, ok := d.token(ctx)
	if !ok {
		d.view.Navigate(models.PageLogin)
		return
	}

	err := d.api.CreateLink(ctx, token, originalURL)
	if err != nil {
		d.view.ShowMessage(rejectionMessage(err, MsgCreateLinkFailed, MsgCreateLinkError))
		return
	}

	d.view.ShowMessage(successMessage(MsgLinkCreated))
	d.view.ResetCreateLinkForm()
	d.FetchLinks(ctx)
}

// Logout always ends the session, whatever state it was in.
func (d *Dashboard) Logout(ctx context.Context) {
	d.endSession(ctx)
}

func (d *Dashboard) endSession(ctx context.Context) {
	if err := d.session.ClearToken(ctx); err != nil {
		logger.Log.Errorln("Error calling the `d.session.ClearToken()`:", zap.Error(err))
	}
	d.view.Navigate(models.PageLogin)
}

func (d *Dashboard) token(ctx context.Context) (string, bool) {
	token, err := d.session.Token(ctx)
	if err != nil {
		logger.Log.Errorln("Error calling the `d.session.Token()`:", zap.Error(err))
		return "", false
	}

	return token, token != ""
}
