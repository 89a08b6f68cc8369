// Package router builds the dev server handler: gateway paths go through a
// reverse proxy, everything else is served from the static directory.
package router

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/linkshrink/internal/gzippedhttp"
	"github.com/patric-chuzhbe/linkshrink/internal/logger"
)

// GatewayPrefixes are the path prefixes owned by the gateway.
var GatewayPrefixes = []string{"/users", "/token", "/links", "/r"}

type accessChecker interface {
	Middleware(h http.Handler) http.Handler
}

// Router holds what the dev server routes to.
type Router struct {
	gateway   *url.URL
	staticDir string
}

// New returns the dev server handler. A prefix matches itself and anything
// below it, so `/r/abc` is proxied while `/robots.txt` is not.
func New(gatewayURL, staticDir string, checker accessChecker) (http.Handler, error) {
	target, err := url.Parse(gatewayURL)
	if err != nil {
		return nil, err
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.New("gateway URL must be absolute")
	}

	myRouter := Router{
		gateway:   target,
		staticDir: staticDir,
	}

	router := chi.NewRouter()
	router.Use(logger.WithLoggingHTTPMiddleware)
	if checker != nil {
		router.Use(checker.Middleware)
	}

	proxy := myRouter.gatewayProxy()
	for _, prefix := range GatewayPrefixes {
		router.Handle(prefix, proxy)
		router.Handle(prefix+"/*", proxy)
	}

	router.With(gzippedhttp.GzipResponse).Handle("/*", myRouter.staticFiles())

	return router, nil
}

func (r *Router) gatewayProxy() http.Handler {
	target := r.gateway

	return &httputil.ReverseProxy{
		Rewrite: func(proxyRequest *httputil.ProxyRequest) {
			proxyRequest.SetURL(target)
			proxyRequest.SetXForwarded()
		},
		ErrorHandler: func(response http.ResponseWriter, request *http.Request, err error) {
			logger.Log.Errorln("gateway proxy error", "uri", request.RequestURI, zap.Error(err))
			response.WriteHeader(http.StatusBadGateway)
		},
	}
}

func (r *Router) staticFiles() http.Handler {
	return http.FileServer(http.Dir(r.staticDir))
}
