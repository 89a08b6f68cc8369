// Package gateway is the HTTP client for the link-shortener gateway:
// account creation, token issuance and the per-user link list.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/linkshrink/internal/logger"
	"github.com/patric-chuzhbe/linkshrink/internal/models"
)

// RequestIDHeader is attached to every outgoing request.
const RequestIDHeader = "X-Request-ID"

// ErrTransport marks failures where no usable answer came back from the
// gateway: network errors and bodies that are not JSON. A non-JSON error
// answer carries both ErrTransport and its *APIError.
var ErrTransport = errors.New("gateway transport failure")

// APIError is a non-2xx answer from the gateway.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Msg string `json:"msg"`
}

type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetLogger(logger.Log)

	httpClient.OnBeforeRequest(func(_ *resty.Client, request *resty.Request) error {
		if request.Header.Get(RequestIDHeader) == "" {
			request.SetHeader(RequestIDHeader, uuid.New().String())
		}
		return nil
	})
	httpClient.OnAfterResponse(func(_ *resty.Client, response *resty.Response) error {
		logger.Log.Debugln(
			"gateway request",
			"method", response.Request.Method,
			"url", response.Request.URL,
			"status", response.StatusCode(),
			"duration", response.Time(),
			"requestID", response.Request.Header.Get(RequestIDHeader),
		)
		return nil
	})

	return &Client{http: httpClient}
}

// CreateUser registers a new account.
func (c *Client) CreateUser(ctx context.Context, credentials models.Credentials) error {
	response, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(credentials).
		Post("/users")
	if err != nil {
		return transportError("CreateUser", err)
	}
	if !response.IsSuccess() {
		return newAPIError(response)
	}

	return nil
}

// IssueToken exchanges credentials for a bearer token. The token endpoint
// takes an OAuth2 password form, so the email travels as `username`.
func (c *Client) IssueToken(ctx context.Context, credentials models.Credentials) (string, error) {
	response, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": credentials.Email,
			"password": credentials.Password,
		}).
		Post("/token")
	if err != nil {
		return "", transportError("IssueToken", err)
	}
	if !response.IsSuccess() {
		return "", newAPIError(response)
	}

	var result models.TokenResponse
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", transportError("IssueToken", err)
	}
	if result.AccessToken == "" {
		return "", transportError("IssueToken", errors.New("no access_token in response"))
	}

	return result.AccessToken, nil
}

// ListLinks returns every link of the token owner.
func (c *Client) ListLinks(ctx context.Context, token string) (models.Links, error) {
	response, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get("/links")
	if err != nil {
		return nil, transportError("ListLinks", err)
	}
	if !response.IsSuccess() {
		return nil, newAPIError(response)
	}

	links := models.Links{}
	if err := json.Unmarshal(response.Body(), &links); err != nil {
		return nil, transportError("ListLinks", err)
	}

	return links, nil
}

// CreateLink asks the gateway to shorten originalURL for the token owner.
func (c *Client) CreateLink(ctx context.Context, token, originalURL string) error {
	response, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(models.CreateLinkRequest{OriginalURL: originalURL}).
		Post("/links")
	if err != nil {
		return transportError("CreateLink", err)
	}
	if !response.IsSuccess() {
		return newAPIError(response)
	}

	return nil
}

func transportError(operation string, err error) error {
	return fmt.Errorf("gateway.%s: %w: %w", operation, ErrTransport, err)
}

func newAPIError(response *resty.Response) error {
	apiErr := &APIError{
		StatusCode: response.StatusCode(),
		Detail:     parseDetail(response.Body(), response.StatusCode()),
	}
	if !json.Valid(response.Body()) {
		return fmt.Errorf("%w: %w", ErrTransport, apiErr)
	}

	return apiErr
}

// parseDetail extracts the `detail` field of an error body. Besides plain
// strings it understands the list of validation issues FastAPI-style
// backends send with 422 answers.
func parseDetail(body []byte, statusCode int) string {
	fallback := http.StatusText(statusCode)
	if fallback == "" {
		fallback = fmt.Sprintf("HTTP %d", statusCode)
	}

	var errBody errorResponse
	if err := json.Unmarshal(body, &errBody); err != nil || len(errBody.Detail) == 0 {
		return fallback
	}

	var detail string
	if err := json.Unmarshal(errBody.Detail, &detail); err == nil {
		if detail == "" {
			return fallback
		}
		return detail
	}

	var issues []validationIssue
	if err := json.Unmarshal(errBody.Detail, &issues); err == nil {
		messages := funk.FilterString(
			funk.Map(issues, func(issue validationIssue) string { return issue.Msg }).([]string),
			func(msg string) bool { return msg != "" },
		)
		if len(messages) > 0 {
			return strings.Join(messages, "; ")
		}
	}

	return fallback
}
