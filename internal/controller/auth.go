package controller

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/linkshrink/internal/gateway"
	"github.com/patric-chuzhbe/linkshrink/internal/logger"
	"github.com/patric-chuzhbe/linkshrink/internal/models"
)

type accountAPI interface {
	CreateUser(ctx context.Context, credentials models.Credentials) error
	IssueToken(ctx context.Context, credentials models.Credentials) (string, error)
}

// Auth drives the signup and login forms.
type Auth struct {
	api     accountAPI
	session tokenKeeper
	view    AuthView
}

func NewAuth(api accountAPI, session tokenKeeper, view AuthView) *Auth {
	return &Auth{
		api:     api,
		session: session,
		view:    view,
	}
}

// Bind registers the form handlers with the view.
func (a *Auth) Bind() {
	a.view.OnSignup(a.SubmitSignup)
	a.view.OnLogin(a.SubmitLogin)
}

// SubmitSignup creates an account. It makes exactly one attempt.
func (a *Auth) SubmitSignup(ctx context.Context, email, password string) {
	credentials := models.Credentials{Email: email, Password: password}
	if err := validate.Struct(credentials); err != nil {
		a.view.ShowMessage(errorMessage(MsgRequiredFields))
		return
	}

	err := a.api.CreateUser(ctx, credentials)
	if err != nil {
		a.view.ShowMessage(rejectionMessage(err, MsgSignupFailed, MsgGenericFailure))
		return
	}

	a.view.ShowMessage(successMessage(MsgSignupSucceeded))
	a.view.ResetSignupForm()
}

// SubmitLogin exchanges the credentials for a token, stores it and moves
// on to the dashboard. Nothing is stored when the gateway refuses.
func (a *Auth) SubmitLogin(ctx context.Context, email, password string) {
	credentials := models.Credentials{Email: email, Password: password}
	if err := validate.Struct(credentials); err != nil {
		a.view.ShowMessage(errorMessage(MsgRequiredFields))
		return
	}

	token, err := a.api.IssueToken(ctx, credentials)
	if err != nil {
		a.view.ShowMessage(rejectionMessage(err, MsgLoginFailed, MsgGenericFailure))
		return
	}

	if err := a.session.SaveToken(ctx, token); err != nil {
		logger.Log.Errorln("Error calling the `a.session.SaveToken()`:", zap.Error(err))
		a.view.ShowMessage(errorMessage(MsgGenericFailure))
		return
	}

	a.view.Navigate(models.PageDashboard)
}

// rejectionMessage turns a gateway error into the text for the message
// area: the server's detail after prefix, or generic for anything that
// never got a readable answer.
func rejectionMessage(err error, prefix, generic string) models.Message {
	var apiErr *gateway.APIError
	if !errors.Is(err, gateway.ErrTransport) && errors.As(err, &apiErr) {
		return errorMessage(prefix + apiErr.Detail)
	}

	logger.Log.Debugln("gateway request failed:", zap.Error(err))

	return errorMessage(generic)
}
