// Package client is a Go client for the DevSphere API. It owns the session
// lifecycle the way the web client did: it attaches the bearer token to every
// request, silently refreshes the access token once on a 401 and retries,
// and drops to an unauthenticated session when the refresh fails. Concurrent
// 401s share a single in-flight refresh.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"sync"
	"time"

	"devsphere-api/model"

	"golang.org/x/sync/singleflight"
)

// ErrSessionExpired is returned when the silent refresh fails; the caller
// must send the user back through login.
var ErrSessionExpired = errors.New("session expired, log in again")

const feedCacheTTL = 30 * time.Second

// APIError carries a non-2xx response from the server.
type APIError struct {
	StatusCode int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL     string
	httpClient  *http.Client
	sessionPath string

	mu      sync.RWMutex
	session *Session
	refresh singleflight.Group

	feedMu   sync.Mutex
	feed     []*model.FeedPost
	feedTime time.Time
}

type Option func(*Client)

// WithSessionFile enables persisting the session to the given path after
// every change.
func WithSessionFile(path string) Option {
	return func(c *Client) { c.sessionPath = path }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// New builds a client around an explicitly constructed session. The cookie
// jar holds the http-only refresh cookie between calls.
func New(baseURL string, session *Session, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Jar: jar, Timeout: 30 * time.Second},
		session:    session,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session == nil {
		c.session = &Session{}
	}
	return c, nil
}

// Session returns a snapshot of the current session.
func (c *Client) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.session
}

type authResponse struct {
	Message     string      `json:"message"`
	User        *model.User `json:"user"`
	AccessToken string      `json:"accessToken"`
}

// Signup registers a new account and authenticates the session.
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	c.setSession(resp.User, resp.AccessToken)
	return resp.User, nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var resp authResponse
	body := model.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	c.setSession(resp.User, resp.AccessToken)
	return resp.User, nil
}

// Logout invalidates the server-side session and clears the local one. Safe
// to call repeatedly.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.clearSession()
	return err
}

// Me resolves the caller's profile from the access token.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var resp struct {
		User *model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Feed fetches the global post feed, serving a recent cached copy when one
// exists. The cache is dropped after any local post mutation.
func (c *Client) Feed(ctx context.Context) ([]*model.FeedPost, error) {
	c.feedMu.Lock()
	if c.feed != nil && time.Since(c.feedTime) < feedCacheTTL {
		posts := c.feed
		c.feedMu.Unlock()
		return posts, nil
	}
	c.feedMu.Unlock()

	var posts []*model.FeedPost
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &posts); err != nil {
		return nil, err
	}

	c.feedMu.Lock()
	c.feed = posts
	c.feedTime = time.Now()
	c.feedMu.Unlock()
	return posts, nil
}

// UserPosts fetches one user's posts, newest first.
func (c *Client) UserPosts(ctx context.Context, userID int) ([]*model.Post, error) {
	var posts []*model.Post
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", userID), nil, &posts)
	return posts, err
}

// CreatePost publishes a post owned by the session user.
func (c *Client) CreatePost(ctx context.Context, title, content string, collab bool) (*model.Post, error) {
	session := c.Session()
	if !session.Authenticated {
		return nil, ErrSessionExpired
	}

	req := model.CreatePostRequest{Title: title, Content: content, Collab: collab, OwnerID: session.User.UserID}
	var post model.Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", req, &post); err != nil {
		return nil, err
	}
	c.invalidateFeed()
	return &post, nil
}

// UpdatePost replaces a post's editable fields.
func (c *Client) UpdatePost(ctx context.Context, postID int, title, content string, collab bool) (*model.Post, error) {
	req := model.UpdatePostRequest{Title: title, Content: content, Collab: collab}
	var post model.Post
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/posts/%d", postID), req, &post); err != nil {
		return nil, err
	}
	c.invalidateFeed()
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, postID int) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", postID), nil, nil); err != nil {
		return err
	}
	c.invalidateFeed()
	return nil
}

func (c *Client) UserInfo(ctx context.Context, userID int) (*model.UserInfo, error) {
	var info model.UserInfo
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/user-info/%d", userID), nil, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// UpdateUserInfo performs the full-replace profile edit for the session user.
func (c *Client) UpdateUserInfo(ctx context.Context, req model.UpdateUserInfoRequest) (*model.UserInfo, error) {
	session := c.Session()
	if !session.Authenticated {
		return nil, ErrSessionExpired
	}

	var info model.UserInfo
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/user-info/%d", session.User.UserID), req, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) User(ctx context.Context, userID int) (*model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", userID), nil, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteAccount removes the session user's account and clears the session.
func (c *Client) DeleteAccount(ctx context.Context) error {
	session := c.Session()
	if !session.Authenticated {
		return ErrSessionExpired
	}

	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", session.User.UserID), nil, nil); err != nil {
		return err
	}
	c.clearSession()
	return nil
}

// do sends one request, transparently retrying exactly once after a silent
// token refresh when a non-auth endpoint answers 401.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !isAuthEndpoint(path) {
		resp.Body.Close()
		if err := c.refreshSession(ctx); err != nil {
			c.clearSession()
			return ErrSessionExpired
		}
		if resp, err = c.send(ctx, method, path, body); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if token := c.accessToken(); token != "" && !isAuthEndpoint(path) {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

// refreshSession exchanges the refresh cookie for a new access token. All
// concurrent callers share one round-trip through the singleflight group.
func (c *Client) refreshSession(ctx context.Context) error {
	_, err, _ := c.refresh.Do("refresh", func() (interface{}, error) {
		resp, err := c.send(ctx, http.MethodPost, "/api/auth/refresh", nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, decodeAPIError(resp)
		}

		var auth authResponse
		if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
			return nil, err
		}
		c.setSession(auth.User, auth.AccessToken)
		return nil, nil
	})
	return err
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.AccessToken
}

func (c *Client) setSession(user *model.User, accessToken string) {
	c.mu.Lock()
	c.session.set(user, accessToken)
	c.mu.Unlock()
	c.persistSession()
}

func (c *Client) clearSession() {
	c.mu.Lock()
	c.session.clear()
	c.mu.Unlock()
	if c.sessionPath != "" {
		os.Remove(c.sessionPath)
	}
}

func (c *Client) persistSession() {
	if c.sessionPath == "" {
		return
	}
	c.mu.RLock()
	snapshot := *c.session
	c.mu.RUnlock()
	if err := SaveSession(c.sessionPath, &snapshot); err != nil {
		// Persistence is best-effort; the in-memory session stays valid.
		return
	}
}

func (c *Client) invalidateFeed() {
	c.feedMu.Lock()
	c.feed = nil
	c.feedMu.Unlock()
}

// The auth endpoints never trigger the silent-refresh retry: a 401 from them
// is a real answer, not an expired access token.
func isAuthEndpoint(path string) bool {
	switch path {
	case "/api/auth/signup", "/api/auth/login", "/api/auth/refresh", "/api/auth/logout":
		return true
	}
	return false
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	apiErr.StatusCode = resp.StatusCode
	return apiErr
}
