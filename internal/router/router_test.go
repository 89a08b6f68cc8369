package router

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/linkshrink/internal/ipchecker"
)

const indexHTML = `<!doctype html><html><body><form id="login-form"></form></body></html>`

type gatewayHit struct {
	method        string
	path          string
	host          string
	authorization string
	forwardedHost string
	form          string
}

type gatewayHits struct {
	mu   sync.Mutex
	list []gatewayHit
}

func (h *gatewayHits) add(hit gatewayHit) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.list = append(h.list, hit)
}

func (h *gatewayHits) all() []gatewayHit {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]gatewayHit(nil), h.list...)
}

func (h *gatewayHits) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.list = nil
}

func newFakeGateway(t *testing.T) (*httptest.Server, *gatewayHits) {
	t.Helper()
	hits := &gatewayHits{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		hits.add(gatewayHit{
			method:        r.Method,
			path:          r.URL.Path,
			host:          r.Host,
			authorization: r.Header.Get("Authorization"),
			forwardedHost: r.Header.Get("X-Forwarded-Host"),
			form:          string(body),
		})
		if r.URL.Path == "/r/abc1234" {
			http.Redirect(w, r, "https://go.dev", http.StatusTemporaryRedirect)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"from":"gateway"}`)
	}))
	t.Cleanup(srv.Close)

	return srv, hits
}

func newStaticDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexHTML), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robots.txt"), []byte("User-agent: *\n"), 0600))

	return dir
}

func newDevServer(t *testing.T, gatewayURL string, checker accessChecker) *httptest.Server {
	t.Helper()
	handler, err := New(gatewayURL, newStaticDir(t), checker)
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv
}

func TestGatewayPathsAreProxied(t *testing.T) {
	gateway, hits := newFakeGateway(t)
	srv := newDevServer(t, gateway.URL, nil)

	type tTestCase struct {
		name   string
		method string
		path   string
	}
	testCases := []tTestCase{
		{name: "users", method: http.MethodPost, path: "/users"},
		{name: "token", method: http.MethodPost, path: "/token"},
		{name: "links list", method: http.MethodGet, path: "/links"},
		{name: "nested links path", method: http.MethodGet, path: "/links/abc"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			hits.reset()
			req := resty.New().R()
			req.Method = testCase.method
			req.URL = srv.URL + testCase.path
			req.SetAuthToken("T1")

			resp, err := req.Send()
			require.NoError(t, err)

			assert.Equal(t, http.StatusOK, resp.StatusCode())
			assert.JSONEq(t, `{"from":"gateway"}`, string(resp.Body()))
			require.Len(t, hits.all(), 1)
			hit := hits.all()[0]
			assert.Equal(t, testCase.method, hit.method)
			assert.Equal(t, testCase.path, hit.path)
			assert.Equal(t, "Bearer T1", hit.authorization)
			assert.Equal(t, gateway.Listener.Addr().String(), hit.host)
			assert.NotEmpty(t, hit.forwardedHost)
		})
	}
}

func TestTokenFormIsForwarded(t *testing.T) {
	gateway, hits := newFakeGateway(t)
	srv := newDevServer(t, gateway.URL, nil)

	resp, err := resty.New().R().
		SetFormData(map[string]string{"username": "a@b.com", "password": "x"}).
		Post(srv.URL + "/token")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	require.Len(t, hits.all(), 1)
	assert.Contains(t, hits.all()[0].form, "username=a%40b.com")
}

func TestRedirectsPassThrough(t *testing.T) {
	gateway, _ := newFakeGateway(t)
	srv := newDevServer(t, gateway.URL, nil)

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(srv.URL + "/r/abc1234")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "https://go.dev", resp.Header.Get("Location"))
}

func TestStaticFilesAreNotProxied(t *testing.T) {
	gateway, hits := newFakeGateway(t)
	srv := newDevServer(t, gateway.URL, nil)

	for _, path := range []string{"/index.html", "/robots.txt", "/"} {
		resp, err := resty.New().R().Get(srv.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode(), path)
	}

	resp, err := resty.New().R().Get(srv.URL + "/dashboard.html")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	assert.Empty(t, hits.all())
}

func TestStaticFilesAreGzipped(t *testing.T) {
	gateway, _ := newFakeGateway(t)
	srv := newDevServer(t, gateway.URL, nil)

	client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/robots.txt", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	zr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "User-agent: *\n", string(body))
}

func TestNotFoundIsNotGzipped(t *testing.T) {
	gateway, _ := newFakeGateway(t)
	srv := newDevServer(t, gateway.URL, nil)

	client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/missing.js", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Content-Encoding"))
}

func TestGatewayDown(t *testing.T) {
	gateway := httptest.NewServer(http.NotFoundHandler())
	gatewayURL := gateway.URL
	gateway.Close()

	srv := newDevServer(t, gatewayURL, nil)

	resp, err := resty.New().R().Get(srv.URL + "/links")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode())
}

func TestTrustedSubnet(t *testing.T) {
	gateway, hits := newFakeGateway(t)

	outside, err := ipchecker.New("10.0.0.0/8")
	require.NoError(t, err)
	srv := newDevServer(t, gateway.URL, outside)

	resp, err := resty.New().R().Get(srv.URL + "/links")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode())
	assert.Empty(t, hits.all())

	loopback, err := ipchecker.New("127.0.0.0/8")
	require.NoError(t, err)
	srv = newDevServer(t, gateway.URL, loopback)

	resp, err = resty.New().R().Get(srv.URL + "/links")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}

func TestNewRejectsRelativeGateway(t *testing.T) {
	_, err := New("gateway", t.TempDir(), nil)
	assert.Error(t, err)
}
