package filesdk

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"
)

// DownloadOptions selects what to download and how to authorize it.
type DownloadOptions struct {
	// VersionID selects an older version; empty downloads the head.
	VersionID string
	// JWT is a temporary access token for the bucket.
	JWT string
}

// Download is an open response body. The caller must close Body.
type Download struct {
	Body         io.ReadCloser
	Filename     string
	ContentType  string
	Size         int64 // -1 when unknown
	LastModified time.Time
}

// DownloadObject fetches one file, authorized by opts.JWT only.
func (c *Client) DownloadObject(ctx context.Context, bucketID, key string, opts DownloadOptions) (*Download, error) {
	return c.download(ctx, objectPath(bucketID, key), objectQuery(opts), "")
}

// DownloadBucket fetches every file of a bucket as a stored ZIP.
func (c *Client) DownloadBucket(ctx context.Context, bucketID, jwt string) (*Download, error) {
	return c.download(ctx, bucketPath(bucketID), bucketQuery(jwt), "")
}

// DownloadObject fetches one file with the session's permissions. A JWT in
// opts takes precedence on the server side.
func (s *Session) DownloadObject(ctx context.Context, bucketID, key string, opts DownloadOptions) (*Download, error) {
	return s.client.download(ctx, objectPath(bucketID, key), objectQuery(opts), s.AccessToken())
}

func (s *Session) DownloadBucket(ctx context.Context, bucketID, jwt string) (*Download, error) {
	return s.client.download(ctx, bucketPath(bucketID), bucketQuery(jwt), s.AccessToken())
}

// Upload stores body as the new head version of key.
func (s *Session) Upload(ctx context.Context, bucketID, key, contentType string, body io.Reader) (*ObjectResponse, error) {
	headers := map[string]string{}
	if contentType != "" {
		headers["Content-Type"] = contentType
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPut, objectPath(bucketID, key), body, headers)
	if err != nil {
		return nil, err
	}

	var obj ObjectResponse
	if err := decodeJSON(resp, &obj, http.StatusCreated); err != nil {
		return nil, err
	}
	return &obj, nil
}

func (c *Client) download(ctx context.Context, path string, q url.Values, bearer string) (*Download, error) {
	resp, err := c.do(ctx, http.MethodGet, path+encodeQuery(q), nil, nil, bearer)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, checkStatus(resp, http.StatusOK)
	}

	d := &Download{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		d.Filename = params["filename"]
	}
	if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		d.LastModified = lm
	}
	return d, nil
}

func objectQuery(opts DownloadOptions) url.Values {
	q := url.Values{}
	if opts.VersionID != "" {
		q.Set("versionId", opts.VersionID)
	}
	if opts.JWT != "" {
		q.Set("jwt", opts.JWT)
	}
	return q
}

func bucketPath(bucketID string) string {
	return "/v1/files/" + url.PathEscape(bucketID) + "/"
}

func bucketQuery(jwt string) url.Values {
	q := url.Values{"all": {"1"}}
	if jwt != "" {
		q.Set("jwt", jwt)
	}
	return q
}
