package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/linkshrink/internal/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL, 5*time.Second)
}

func TestCreateUser(t *testing.T) {
	var received models.Credentials
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"1","email":"a@b.com"}`)
	})

	err := client.CreateUser(context.Background(), models.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, models.Credentials{Email: "a@b.com", Password: "x"}, received)
}

func TestCreateUserRejected(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail":"Email already registered"}`)
	})

	err := client.CreateUser(context.Background(), models.Credentials{Email: "a@b.com", Password: "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Email already registered", apiErr.Detail)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
}

func TestIssueToken(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "a@b.com", r.PostForm.Get("username"))
		assert.Equal(t, "x", r.PostForm.Get("password"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"T1","token_type":"bearer"}`)
	})

	token, err := client.IssueToken(context.Background(), models.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "T1", token)
}

func TestIssueTokenWithoutToken(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"token_type":"bearer"}`)
	})

	_, err := client.IssueToken(context.Background(), models.Credentials{Email: "a@b.com", Password: "x"})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestListLinks(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"short_url":"http://localhost:8080/abc1234","original_url":"https://go.dev"},
			{"short_url":"http://localhost:8080/def5678","original_url":"https://pkg.go.dev"}
		]`)
	})

	links, err := client.ListLinks(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, models.Links{
		{ShortURL: "http://localhost:8080/abc1234", OriginalURL: "https://go.dev"},
		{ShortURL: "http://localhost:8080/def5678", OriginalURL: "https://pkg.go.dev"},
	}, links)
}

func TestListLinksUnauthorized(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `not even json`)
	})

	_, err := client.ListLinks(context.Background(), "stale")
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestNonJSONErrorBodyIsTransportFailure(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `<html><body><h1>502 Bad Gateway</h1></body></html>`)
	})

	err := client.CreateUser(context.Background(), models.Credentials{Email: "a@b.com", Password: "x"})

	assert.ErrorIs(t, err, ErrTransport)
	assert.True(t, IsStatus(err, http.StatusBadGateway))
}

func TestJSONErrorBodyIsNotTransportFailure(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"boom"}`)
	})

	err := client.CreateLink(context.Background(), "T1", "https://go.dev")

	assert.NotErrorIs(t, err, ErrTransport)
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
}

func TestListLinksBrokenBody(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"oops"`)
	})

	_, err := client.ListLinks(context.Background(), "T1")
	assert.ErrorIs(t, err, ErrTransport)
}

func TestCreateLink(t *testing.T) {
	var received models.CreateLinkRequest
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/links", r.URL.Path)
		assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, client.CreateLink(context.Background(), "T1", "https://go.dev"))
	assert.Equal(t, "https://go.dev", received.OriginalURL)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := New(srv.URL, time.Second)

	err := client.CreateLink(context.Background(), "T1", "https://go.dev")
	assert.ErrorIs(t, err, ErrTransport)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestParseDetail(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		statusCode int
		want       string
	}{
		{
			name:       "plain string",
			body:       `{"detail":"Incorrect email or password"}`,
			statusCode: http.StatusUnauthorized,
			want:       "Incorrect email or password",
		},
		{
			name:       "validation issues",
			body:       `{"detail":[{"loc":["body","original_url"],"msg":"field required"},{"msg":"value is not a valid url"}]}`,
			statusCode: http.StatusUnprocessableEntity,
			want:       "field required; value is not a valid url",
		},
		{
			name:       "no detail",
			body:       `{"error":"nope"}`,
			statusCode: http.StatusInternalServerError,
			want:       "Internal Server Error",
		},
		{
			name:       "not json",
			body:       `<html>bad gateway</html>`,
			statusCode: http.StatusBadGateway,
			want:       "Bad Gateway",
		},
		{
			name:       "unknown status",
			body:       ``,
			statusCode: 599,
			want:       "HTTP 599",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, parseDetail([]byte(testCase.body), testCase.statusCode))
		})
	}
}
