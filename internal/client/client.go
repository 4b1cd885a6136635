// Package client is a typed HTTP client for the catatan REST API.
//
// The client holds no authentication state. Every authenticated call takes
// the caller's Credential explicitly, so one Client can serve many users
// concurrently. Scoped binds a Credential for code that works on behalf of a
// single user, such as an autosave.Workbench.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/catatan/catatan/internal/models"
	"github.com/catatan/catatan/internal/page"
)

// ErrUnauthorized matches 401 responses.
var ErrUnauthorized = errors.New("unauthorized")

// Credential is a bearer access token.
type Credential string

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.Status, strings.TrimSpace(e.Body))
}

// Unwrap maps the status onto the page error taxonomy so callers can use
// errors.Is(err, page.ErrNotFound) and friends.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return page.ErrNotFound
	case e.Status == http.StatusConflict:
		return page.ErrConflict
	case e.Status == http.StatusBadRequest:
		return page.ErrValidation
	case e.Status >= 500:
		return page.ErrStorageUnavailable
	}
	return nil
}

// Client talks to one API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client for baseURL, e.g. "http://localhost:4000". The /api
// prefix is added per call.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, cred Credential, method, path string, body, target any) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred != "" {
		req.Header.Set("Authorization", "Bearer "+string(cred))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{Status: resp.StatusCode, Body: string(b)}
	}
	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func pagePath(id string) string { return "/pages/" + url.PathEscape(id) }
func trashPath(id string) string { return "/trash/" + url.PathEscape(id) }

// Accounts

// LoginResult is the response of Login.
type LoginResult struct {
	AccessToken string        `json:"accessToken"`
	User        models.Public `json:"user"`
}

// Credential returns the access token as a Credential.
func (r *LoginResult) Credential() Credential { return Credential(r.AccessToken) }

func (c *Client) Register(ctx context.Context, name, email, password string) (*models.Public, error) {
	var out models.Public
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, "", http.MethodPost, "/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "", http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes cred on the server.
func (c *Client) Logout(ctx context.Context, cred Credential) error {
	return c.do(ctx, cred, http.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the identity behind cred.
func (c *Client) Me(ctx context.Context, cred Credential) (*models.Public, error) {
	var out models.Public
	if err := c.do(ctx, cred, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pages

func (c *Client) ListPages(ctx context.Context, cred Credential) ([]page.Summary, error) {
	var out []page.Summary
	if err := c.do(ctx, cred, http.MethodGet, "/pages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPage(ctx context.Context, cred Credential, id string) (*page.Page, error) {
	var out page.Page
	if err := c.do(ctx, cred, http.MethodGet, pagePath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePage(ctx context.Context, cred Credential, name string) (*page.Summary, error) {
	var out page.Summary
	if err := c.do(ctx, cred, http.MethodPost, "/pages", map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePage overwrites title, content and display name.
func (c *Client) UpdatePage(ctx context.Context, cred Credential, id string, e page.Edit) error {
	return c.do(ctx, cred, http.MethodPut, pagePath(id), e, nil)
}

// TrashPage moves a page to the trash.
func (c *Client) TrashPage(ctx context.Context, cred Credential, id string) error {
	return c.do(ctx, cred, http.MethodDelete, pagePath(id), nil, nil)
}

// Trash

func (c *Client) ListTrash(ctx context.Context, cred Credential) ([]page.TrashedSummary, error) {
	var out []page.TrashedSummary
	if err := c.do(ctx, cred, http.MethodGet, "/trash", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RestorePage(ctx context.Context, cred Credential, id string) error {
	return c.do(ctx, cred, http.MethodPost, trashPath(id)+"/restore", nil, nil)
}

// PurgePage permanently deletes a trashed page.
func (c *Client) PurgePage(ctx context.Context, cred Credential, id string) error {
	return c.do(ctx, cred, http.MethodDelete, trashPath(id)+"/permanent", nil, nil)
}

// Scoped binds cred to the client. The result is immutable and implements
// autosave.Backend.
func (c *Client) Scoped(cred Credential) Scoped {
	return Scoped{client: c, cred: cred}
}

// Scoped is a Client bound to one user's credential.
type Scoped struct {
	client *Client
	cred   Credential
}

func (s Scoped) Save(ctx context.Context, pageID string, e page.Edit) error {
	return s.client.UpdatePage(ctx, s.cred, pageID, e)
}

func (s Scoped) Load(ctx context.Context, pageID string) (*page.Page, error) {
	return s.client.GetPage(ctx, s.cred, pageID)
}

func (s Scoped) Trash(ctx context.Context, pageID string) error {
	return s.client.TrashPage(ctx, s.cred, pageID)
}
