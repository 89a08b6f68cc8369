package controller_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/linkshrink/internal/controller"
	"github.com/patric-chuzhbe/linkshrink/internal/gateway"
	"github.com/patric-chuzhbe/linkshrink/internal/mocks"
	"github.com/patric-chuzhbe/linkshrink/internal/models"
	"github.com/patric-chuzhbe/linkshrink/internal/session"
	"github.com/patric-chuzhbe/linkshrink/internal/session/jsonfile"
)

func newHTMLErrorGateway(t *testing.T, status int) *gateway.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `<html><body><h1>Bad Gateway</h1></body></html>`)
	}))
	t.Cleanup(srv.Close)

	return gateway.New(srv.URL, time.Second)
}

// newUnwritableSession returns a file-backed session whose file has been
// replaced by a directory, so every save and clear fails.
func newUnwritableSession(t *testing.T, token string) *session.Session {
	t.Helper()
	fileName := filepath.Join(t.TempDir(), "session.json")
	db, err := jsonfile.New(fileName)
	require.NoError(t, err)
	sess := session.New(db, "http://gateway:80")
	if token != "" {
		require.NoError(t, sess.SaveToken(context.Background(), token))
	}

	require.NoError(t, os.Remove(fileName))
	require.NoError(t, os.Mkdir(fileName, 0700))

	return sess
}

func TestUnreadableErrorBodyShowsGenericMessage(t *testing.T) {
	t.Run("signup", func(t *testing.T) {
		view := &mocks.AuthViewMock{}
		view.On("ShowMessage", models.Message{Text: "An error occurred. Please try again.", Kind: models.MessageError}).Once()

		auth := controller.NewAuth(newHTMLErrorGateway(t, http.StatusBadGateway), newTestSession(t), view)
		auth.SubmitSignup(context.Background(), "a@b.com", "x")

		view.AssertExpectations(t)
		view.AssertNotCalled(t, "ResetSignupForm")
	})

	t.Run("create link", func(t *testing.T) {
		view := &mocks.DashboardViewMock{}
		sess := newTestSession(t)
		require.NoError(t, sess.SaveToken(context.Background(), "T1"))
		view.On("ShowMessage", models.Message{Text: "An error occurred.", Kind: models.MessageError}).Once()

		dashboard := controller.NewDashboard(newHTMLErrorGateway(t, http.StatusBadGateway), sess, view)
		dashboard.SubmitCreateLink(context.Background(), "https://go.dev")

		view.AssertExpectations(t)
		view.AssertNotCalled(t, "ResetCreateLinkForm")
	})

	t.Run("unauthorized fetch still ends the session", func(t *testing.T) {
		view := &mocks.DashboardViewMock{}
		sess := newTestSession(t)
		require.NoError(t, sess.SaveToken(context.Background(), "T1"))
		view.On("Navigate", models.PageLogin).Once()

		dashboard := controller.NewDashboard(newHTMLErrorGateway(t, http.StatusUnauthorized), sess, view)
		dashboard.FetchLinks(context.Background())

		view.AssertExpectations(t)
		view.AssertNotCalled(t, "ShowMessage", mock.Anything)
		assert.Empty(t, storedToken(t, sess))
	})
}

func TestLoginWithUnsavableTokenStoresNothing(t *testing.T) {
	api := &mocks.GatewayMock{}
	view := &mocks.AuthViewMock{}
	sess := newUnwritableSession(t, "")

	api.On("IssueToken", mock.Anything, models.Credentials{Email: "a@b.com", Password: "x"}).Return("T1", nil).Once()
	view.On("ShowMessage", models.Message{Text: "An error occurred. Please try again.", Kind: models.MessageError}).Once()

	controller.NewAuth(api, sess, view).SubmitLogin(context.Background(), "a@b.com", "x")

	view.AssertExpectations(t)
	view.AssertNotCalled(t, "Navigate", mock.Anything)
	assert.Empty(t, storedToken(t, sess))

	dashboardView := &mocks.DashboardViewMock{}
	dashboardView.On("Navigate", models.PageLogin).Once()
	assert.False(t, controller.NewDashboard(api, sess, dashboardView).Guard(context.Background()))
	dashboardView.AssertExpectations(t)
}

func TestLogoutWithUnwritableStoreKeepsTokenVisible(t *testing.T) {
	view := &mocks.DashboardViewMock{}
	sess := newUnwritableSession(t, "T1")
	view.On("Navigate", models.PageLogin).Once()

	controller.NewDashboard(&mocks.GatewayMock{}, sess, view).Logout(context.Background())

	view.AssertExpectations(t)
	assert.Equal(t, "T1", storedToken(t, sess), "memory must keep matching the file that still holds the token")
}
