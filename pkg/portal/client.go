package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/oullin/profilesync/pkg/endpoint"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/oullin/profilesync/pkg/portal"

var ErrSessionExpired = errors.New("session expired")

// TokenSource hands out bearer tokens. Refresh is called at most once per
// request, after the backend answered 401.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

type ClientConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Transport *http.Transport
}

type Client struct {
	UserAgent string
	Tokens    TokenSource
	OnHeaders func(req *http.Request)
	Metrics   *Metrics
	base      *url.URL
	client    *http.Client
	transport *http.Transport
	tracer    trace.Tracer
}

type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Header      http.Header
	Body        []byte
	ContentType string
	Anonymous   bool
}

type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	RequestID string
}

// Part is one file of a multipart upload.
type Part struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

type Option func(*Request)

func Anonymous() Option {
	return func(r *Request) {
		r.Anonymous = true
	}
}

func WithQuery(key, value string) Option {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = url.Values{}
		}

		r.Query.Add(key, value)
	}
}

func WithHeader(key, value string) Option {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = http.Header{}
		}

		r.Header.Set(key, value)
	}
}

func GetDefaultTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

func NewClient(cfg ClientConfig) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("portal: invalid base url %q", cfg.BaseURL)
	}

	transport := cfg.Transport
	if transport == nil {
		transport = GetDefaultTransport()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("portal: cookie jar: %w", err)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "profilesync"
	}

	return &Client{
		UserAgent: userAgent,
		base:      base,
		transport: transport,
		tracer:    otel.Tracer(tracerName),
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			Jar:       jar,
		},
	}, nil
}

func (c *Client) BaseURL() string {
	return c.base.String()
}

// Resolve turns a server relative path into an absolute URL. Absolute URLs
// are returned unchanged.
func (c *Client) Resolve(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}

	ref, err := url.Parse("/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return ""
	}

	return c.base.ResolveReference(ref).String()
}

func (c *Client) GetJSON(ctx context.Context, path string, out any, opts ...Option) error {
	req := Request{Method: http.MethodGet, Path: path}

	return c.exchange(ctx, req, out, opts)
}

// PatchJSON sends body as a merge-patch document.
func (c *Client) PatchJSON(ctx context.Context, path string, body any, out any, opts ...Option) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("portal: encode patch body: %w", err)
	}

	req := Request{Method: http.MethodPatch, Path: path, Body: data, ContentType: ContentTypeMergePatch}

	return c.exchange(ctx, req, out, opts)
}

func (c *Client) PostJSON(ctx context.Context, path string, body any, out any, opts ...Option) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("portal: encode post body: %w", err)
	}

	req := Request{Method: http.MethodPost, Path: path, Body: data, ContentType: ContentTypeJSON}

	return c.exchange(ctx, req, out, opts)
}

func (c *Client) PostMultipart(ctx context.Context, path string, parts []Part, out any, opts ...Option) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, part := range parts {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, part.Field, part.FileName))

		contentType := part.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		w, err := writer.CreatePart(header)
		if err != nil {
			return fmt.Errorf("portal: multipart part %s: %w", part.FileName, err)
		}

		if _, err := w.Write(part.Data); err != nil {
			return fmt.Errorf("portal: multipart write %s: %w", part.FileName, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("portal: multipart close: %w", err)
	}

	req := Request{Method: http.MethodPost, Path: path, Body: buf.Bytes(), ContentType: writer.FormDataContentType()}

	return c.exchange(ctx, req, out, opts)
}

// Probe reports whether rawURL answers a HEAD request with a 2xx status.
func (c *Client) Probe(ctx context.Context, rawURL string) (bool, error) {
	target := c.Resolve(rawURL)
	if target == "" {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false, fmt.Errorf("portal: probe request: %w", err)
	}

	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("portal: probe %s: %w", target, err)
	}

	defer CloseWithLog(resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

func (c *Client) exchange(ctx context.Context, req Request, out any, opts []Option) error {
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("portal: decode %s %s: %w", req.Method, req.Path, err)
	}

	return nil
}

// Do performs req. A 401 on an authenticated request refreshes the token
// once and replays the request; a second failure yields ErrSessionExpired.
// Non-2xx answers are returned as *endpoint.ApiError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("client is nil")
	}

	ctx, span := c.tracer.Start(ctx, req.Method+" "+RouteOf(req.Path), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	token := ""
	if !req.Anonymous && c.Tokens != nil {
		var err error
		if token, err = c.Tokens.Token(ctx); err != nil {
			span.SetStatus(codes.Error, err.Error())

			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}
	}

	resp, err := c.send(ctx, req, token)

	if err == nil && resp.Status == http.StatusUnauthorized && !req.Anonymous && c.Tokens != nil {
		if c.Metrics != nil {
			c.Metrics.Retries.Inc()
		}

		if token, err = c.Tokens.Refresh(ctx); err != nil {
			span.SetStatus(codes.Error, err.Error())

			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}

		resp, err = c.send(ctx, req, token)

		if err == nil && resp.Status == http.StatusUnauthorized {
			apiErr := c.failure(req, resp)
			span.SetStatus(codes.Error, apiErr.Error())

			return nil, fmt.Errorf("%w: %w", ErrSessionExpired, apiErr)
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, endpoint.Transport(req.Method, req.Path, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.Status))

	if resp.Status < 200 || resp.Status >= 300 {
		apiErr := c.failure(req, resp)
		span.SetStatus(codes.Error, apiErr.Error())

		return nil, apiErr
	}

	return resp, nil
}

func (c *Client) failure(req Request, resp *Response) *endpoint.ApiError {
	apiErr := endpoint.FromResponse(req.Method, req.Path, resp.Status, resp.Body)
	apiErr.RequestID = resp.RequestID

	return apiErr
}

func (c *Client) send(ctx context.Context, req Request, token string) (*Response, error) {
	target, err := c.target(req)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()

	httpReq.Header.Set("User-Agent", c.UserAgent)
	httpReq.Header.Set("Accept", AcceptHeader)
	httpReq.Header.Set("Accept-Encoding", AcceptEncodingHeader)
	httpReq.Header.Set(RequestIDHeader, requestID)

	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	if token != "" {
		httpReq.Header.Set(AuthorizationHeader, "Bearer "+token)
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	if c.OnHeaders != nil {
		c.OnHeaders(httpReq)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	start := time.Now()
	httpResp, err := c.client.Do(httpReq)
	c.observe(req, httpResp, time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	defer CloseWithLog(httpResp.Body)

	data, err := readBody(httpResp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if id := httpResp.Header.Get(RequestIDHeader); id != "" {
		requestID = id
	}

	return &Response{
		Status:    httpResp.StatusCode,
		Header:    httpResp.Header,
		Body:      data,
		RequestID: requestID,
	}, nil
}

func (c *Client) target(req Request) (string, error) {
	ref, err := url.Parse(req.Path)
	if err != nil {
		return "", fmt.Errorf("portal: invalid path %q: %w", req.Path, err)
	}

	u := c.base.ResolveReference(ref)
	if !ref.IsAbs() && !strings.HasPrefix(req.Path, "/") {
		u = c.base.JoinPath(ref.Path)
		u.RawQuery = ref.RawQuery
	}

	if len(req.Query) > 0 {
		q := u.Query()
		for key, values := range req.Query {
			for _, value := range values {
				q.Add(key, value)
			}
		}

		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

func (c *Client) observe(req Request, resp *http.Response, elapsed time.Duration) {
	if c.Metrics == nil {
		return
	}

	code := "error"
	if resp != nil {
		code = strconv.Itoa(resp.StatusCode)
	}

	route := RouteOf(req.Path)

	c.Metrics.Requests.WithLabelValues(req.Method, route, code).Inc()
	c.Metrics.Latency.WithLabelValues(req.Method, route).Observe(elapsed.Seconds())
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "zstd":
		decoder, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer decoder.Close()

		reader = decoder
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer CloseWithLog(gz)

		reader = gz
	}

	return ReadCapped(reader, MaxResponseBytes)
}
