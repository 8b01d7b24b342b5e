package fetch

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Fetcher is the single dispatch capability that code under test depends on.
// Real fetchers reach the network; the interceptor answers from its registry.
type Fetcher interface {
	// Fetch performs req and returns the response.
	Fetch(req *Request) (*Response, error)
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(req *Request) (*Response, error)

// Fetch calls f(req).
func (f FetcherFunc) Fetch(req *Request) (*Response, error) { return f(req) }

var (
	// ErrInvalidURL indicates a malformed or unsupported URL.
	ErrInvalidURL = errors.New("invalid URL provided")

	// ErrInvalidMethod indicates an HTTP method not permitted by NewRequest.
	ErrInvalidMethod = errors.New("invalid HTTP method")

	// ErrReadBody wraps failures while reading a request body stream.
	ErrReadBody = errors.New("failed to read request body")

	// ErrNilRequest indicates a nil Request pointer was dispatched.
	ErrNilRequest = errors.New("request is nil")

	// ErrNoFetcher is returned by a Client with nothing bound to it.
	ErrNoFetcher = errors.New("no fetcher bound to client")

	// ErrDecodeBody wraps failures while decoding a response body as JSON.
	ErrDecodeBody = errors.New("failed to decode response body")

	// ErrMarshalRequest wraps failures while encoding the request payload.
	ErrMarshalRequest = errors.New("failed to create request")

	// ErrUnmarshalResponse wraps failures while decoding the host response.
	ErrUnmarshalResponse = errors.New("failed to unmarshal response")
)

// Request represents a single outbound request.
type Request struct {
	// Method is the HTTP method (e.g., GET, POST).
	Method string
	// URL is the full request URL; Host must be non-empty.
	URL *url.URL
	// RawURL is the URL string exactly as the caller supplied it. Parsing
	// re-escapes paths, so matching uses this form when it is set.
	RawURL string
	// Header holds request headers. Nil is treated as empty.
	Header http.Header
	// Body is the request payload. Bodies are single-shot, so they are held in memory.
	Body []byte
}

// Href returns the effective request URL: RawURL when set, otherwise the
// serialised URL.
func (r *Request) Href() string {
	if r.RawURL != "" {
		return r.RawURL
	}
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}

// Init returns the request-init view of r: everything except the URL.
func (r *Request) Init() *Init {
	return &Init{Method: r.Method, Header: r.Header, Body: r.Body}
}

// Init is the request-init data that accompanies a URL in a fetch call.
type Init struct {
	Method string
	Header http.Header
	Body   []byte
}

// String returns the canonical stringified init. An empty method reads as
// GET and empty headers or bodies are omitted, so inits that describe the
// same request compare equal.
func (i *Init) String() string {
	if i == nil {
		return ""
	}

	method := strings.ToUpper(i.Method)
	if method == "" {
		method = http.MethodGet
	}

	// encoding/json sorts map keys, which keeps header order stable.
	b, err := json.Marshal(struct {
		Method string      `json:"method"`
		Header http.Header `json:"headers,omitempty"`
		Body   string      `json:"body,omitempty"`
	}{
		Method: method,
		Header: i.Header,
		Body:   string(i.Body),
	})
	if err != nil {
		return method
	}
	return string(b)
}

// Response represents a response returned by a Fetcher.
type Response struct {
	// Status is the HTTP status text (e.g., "OK").
	Status string
	// StatusCode is the numeric HTTP status code (e.g., 200).
	StatusCode int
	// Header contains response headers. Nil is treated as empty.
	Header http.Header
	// Body is the response payload. It may be empty.
	Body []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON decodes the body into v. An empty body leaves v untouched.
func (r *Response) JSON(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Join(ErrDecodeBody, err)
	}
	return nil
}

// NewRequest creates a new Request to dispatch through a Fetcher.
func NewRequest(method, urlString string, body io.Reader) (*Request, error) {
	// Validate the HTTP method first
	if !isValidMethod(method) {
		return nil, ErrInvalidMethod
	}

	parsedURL, err := parseURL(urlString)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method: method,
		URL:    parsedURL,
		RawURL: urlString,
		Header: make(http.Header),
	}

	// Read the body content if present
	if body != nil {
		b, err := io.ReadAll(body)
		if err != nil {
			return nil, errors.Join(ErrReadBody, err)
		}
		req.Body = b
	}

	return req, nil
}

func parseURL(urlString string) (*url.URL, error) {
	u, err := url.Parse(urlString)
	if err != nil || u == nil || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

func isValidMethod(method string) bool {
	switch method {
	case http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodConnect,
		http.MethodOptions,
		http.MethodTrace:
		return true
	default:
		return false
	}
}
