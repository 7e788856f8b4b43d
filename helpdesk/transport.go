package helpdesk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

const (
	// DefaultAuthHeader is the header on-premise portals read the API key from.
	DefaultAuthHeader = "authtoken"
	// DefaultAccept is the media type of the v3 API.
	DefaultAccept = "application/vnd.manageengine.sdp.v3+json"
	// DefaultTimeout bounds a single round trip of the default HTTP client.
	DefaultTimeout = 30 * time.Second
)

// Request is a single call the client asks a Transport to perform. Path is
// relative to the portal base URL. At most one of Form and File is used as
// the body.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	File   *FileUpload
}

// Response is the status and raw body of a completed call.
type Response struct {
	StatusCode int
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport performs HTTP round trips. Connection, TLS and timeout failures
// are returned as-is; any status code is a successful round trip.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Streamer is implemented by transports that can hand back an unread body.
type Streamer interface {
	Stream(ctx context.Context, req *Request) (*http.Response, error)
}

// HTTPTransport is a Transport backed by net/http.
type HTTPTransport struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	authHeader string
	apiKey     string
	userAgent  string
}

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// WithTimeout sets the timeout of the pooled default client. A client passed
// through WithHTTPClient keeps its own timeout.
func WithTimeout(timeout time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		t.timeout = timeout
	}
}

// WithAPIKey authenticates every call with key sent in header.
func WithAPIKey(header, key string) TransportOption {
	return func(t *HTTPTransport) {
		if header != "" {
			t.authHeader = header
		}
		t.apiKey = key
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) TransportOption {
	return func(t *HTTPTransport) {
		t.userAgent = userAgent
	}
}

// NewHTTPTransport creates a transport for the portal at baseURL.
func NewHTTPTransport(baseURL string, opts ...TransportOption) (*HTTPTransport, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: helpdesk URL is required", ErrInvalidConfig)
	}

	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("%w: invalid helpdesk URL: %v", ErrInvalidConfig, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: helpdesk URL must be absolute: %s", ErrInvalidConfig, baseURL)
	}

	client := cleanhttp.DefaultPooledClient()

	t := &HTTPTransport{
		baseURL:    base,
		httpClient: client,
		timeout:    DefaultTimeout,
		authHeader: DefaultAuthHeader,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.httpClient == client {
		client.Timeout = t.timeout
	}

	return t, nil
}

// BaseURL returns the portal base URL, always ending in a slash.
func (t *HTTPTransport) BaseURL() string {
	return t.baseURL.String()
}

// Do implements Transport
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := t.Stream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// Stream implements Streamer. The caller must close the response body.
func (t *HTTPTransport) Stream(ctx context.Context, req *Request) (*http.Response, error) {
	httpReq, err := t.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	return t.httpClient.Do(httpReq)
}

func (t *HTTPTransport) newRequest(ctx context.Context, req *Request) (*http.Request, error) {
	ref, err := url.Parse(req.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", req.Path, err)
	}
	target := t.baseURL.ResolveReference(ref)

	if len(req.Query) > 0 {
		query := target.Query()
		for key, values := range req.Query {
			for _, v := range values {
				query.Add(key, v)
			}
		}
		target.RawQuery = query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.File != nil:
		buf, ct, err := encodeMultipart(req.File)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", DefaultAccept)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if t.apiKey != "" {
		httpReq.Header.Set(t.authHeader, t.apiKey)
	}
	if t.userAgent != "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}

	return httpReq, nil
}

func encodeMultipart(file *FileUpload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(string(file.Field)), escapeQuotes(file.Filename)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create multipart part: %w", err)
	}
	if file.Content != nil {
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write multipart content: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
