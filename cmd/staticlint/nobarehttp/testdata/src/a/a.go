package a

import (
	"net/http"
	"net/url"
	"time"
)

func fetchLinks() (*http.Response, error) {
	return http.Get("http://gateway:80/links") // want `use the gateway client instead of http.Get`
}

func issueToken() (*http.Response, error) {
	return http.PostForm("http://gateway:80/token", url.Values{"username": {"a@b.com"}}) // want `use the gateway client instead of http.PostForm`
}

func customClient() *http.Client {
	return &http.Client{Timeout: time.Second} // want `use the gateway client instead of a new http.Client`
}

func defaultClient() *http.Client {
	return http.DefaultClient // want `use the gateway client instead of http.DefaultClient`
}

func serve() {
	http.Handle("/", http.NotFoundHandler())
}
