package gateway

import (
	"net/http"
	"time"
)

func newClient() *http.Client {
	return &http.Client{Timeout: time.Second}
}

func ping() (*http.Response, error) {
	return http.Get("http://gateway:80/")
}
