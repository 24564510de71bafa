package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
	"github.com/dmitrijs2005/garagekeeper/internal/logging"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request id so backend logs can be correlated
// with client logs.
const RequestIDHeader = "X-Request-ID"

// HTTPDoer is the part of *http.Client the HTTPClient needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClientConfig configures NewHTTPClient.
type HTTPClientConfig struct {
	// BaseURL is the API root, e.g. "http://127.0.0.1:8000/api".
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource
	// HTTPClient overrides the default *http.Client (tests).
	HTTPClient HTTPDoer
	Logger     logging.Logger
}

// HTTPClient implements Client over the backend REST API.
type HTTPClient struct {
	baseURL string
	http    HTTPDoer
	tokens  TokenSource
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    doer,
		tokens:  cfg.Tokens,
		log:     log.With("component", "api"),
	}
}

func (c *HTTPClient) Me(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, "/me/", nil, &u)
	return u, err
}

// Login exchanges credentials for a token pair. Any 4xx here means the
// credentials were rejected, so it is reported as KindAuth.
func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (models.TokenPair, error) {
	var pair models.TokenPair
	err := c.do(ctx, http.MethodPost, "/token/", creds, &pair)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Kind == KindValidation {
			apiErr.Kind = KindAuth
		}
		return models.TokenPair{}, err
	}
	if pair.Access == "" {
		return models.TokenPair{}, &Error{Kind: KindAuth, Message: "token response without access token"}
	}
	return pair, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/users/", reg, &u)
	return u, err
}

func (c *HTTPClient) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	return c.do(ctx, http.MethodPut, "/change-password/", change, nil)
}

func (c *HTTPClient) DeleteAccount(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d/", userID), nil, nil)
}

func (c *HTTPClient) ListCars(ctx context.Context) ([]models.Car, error) {
	cars := []models.Car{}
	err := c.do(ctx, http.MethodGet, "/cars/", nil, &cars)
	return cars, err
}

func (c *HTTPClient) CreateCar(ctx context.Context, car models.CarPayload) (models.Car, error) {
	var out models.Car
	err := c.do(ctx, http.MethodPost, "/cars/", car, &out)
	return out, err
}

func (c *HTTPClient) CreateCarForOwner(ctx context.Context, ownerID int64, car models.CarPayload) (models.Car, error) {
	var out models.Car
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/cars/owner/%d/", ownerID), car, &out)
	return out, err
}

func (c *HTTPClient) UpdateCar(ctx context.Context, id int64, car models.CarPayload) (models.Car, error) {
	var out models.Car
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/cars/%d/", id), car, &out)
	return out, err
}

func (c *HTTPClient) DeleteCar(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cars/%d/", id), nil, nil)
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := c.do(ctx, http.MethodGet, "/admin/users/", nil, &users)
	return users, err
}

func (c *HTTPClient) GetUser(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/admin/users/%d/", id), nil, &u)
	return u, err
}

func (c *HTTPClient) CreateUser(ctx context.Context, user models.UserPayload) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/admin/users/", user, &u)
	return u, err
}

func (c *HTTPClient) UpdateUser(ctx context.Context, id int64, user models.UserPayload) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/users/%d/", id), user, &u)
	return u, err
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d/", id), nil, nil)
}

// do performs one JSON round trip. in is marshalled as the body when non-nil;
// out receives the decoded 2xx body when non-nil and the body is not empty.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return fmt.Errorf("read access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := c.log.With("method", method, "path", path, "request_id", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err)
		return networkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := statusError(resp.StatusCode, respBody)
		log.Debug(ctx, "request rejected", "status", resp.StatusCode, "kind", apiErr.Kind)
		return apiErr
	}

	log.Debug(ctx, "request done", "status", resp.StatusCode)

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}
