package filesdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the file access service without a session.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client. Downloads can be large, so the default HTTP
// client only bounds the wait for response headers.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
	}
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	body, err := jsonBody(LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/sessions", body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var sess SessionResponse
	if err := decodeJSON(resp, &sess, http.StatusCreated); err != nil {
		return nil, err
	}
	return newSession(c, &sess), nil
}

// NewSessionFromToken wraps a session token obtained elsewhere.
func (c *Client) NewSessionFromToken(accessToken string, expiresAt time.Time) *Session {
	return &Session{client: c, accessToken: accessToken, expiresAt: expiresAt}
}

// CreateUser provisions a user. bootstrapToken is the operator secret
// configured on the server.
func (c *Client) CreateUser(ctx context.Context, bootstrapToken string, req CreateUserRequest) (*UserResponse, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"Content-Type":      "application/json",
		"X-Bootstrap-Token": bootstrapToken,
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/users", body, headers)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// TempAccessURL builds the download link for one file of a bucket, carrying
// a temporary access token.
func (c *Client) TempAccessURL(bucketID, key, jwt string) string {
	q := url.Values{}
	if jwt != "" {
		q.Set("jwt", jwt)
	}
	return c.url(objectPath(bucketID, key)) + encodeQuery(q)
}

// BucketArchiveURL builds the link that downloads every file of a bucket as
// files.zip.
func (c *Client) BucketArchiveURL(bucketID, jwt string) string {
	return c.url(bucketPath(bucketID)) + encodeQuery(bucketQuery(jwt))
}

func encodeQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// objectPath escapes each key segment but keeps the slashes.
func objectPath(bucketID, key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return "/v1/files/" + url.PathEscape(bucketID) + "/" + strings.Join(segs, "/")
}
