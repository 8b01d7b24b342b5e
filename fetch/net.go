package fetch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// NetFetcher performs requests with a standard library *http.Client.
type NetFetcher struct {
	client *http.Client
}

// Ensure NetFetcher always satisfies the Fetcher interface at compile time.
var _ Fetcher = (*NetFetcher)(nil)

// NewNetFetcher returns a Fetcher that sends requests with c, or with
// http.DefaultClient when c is nil.
func NewNetFetcher(c *http.Client) *NetFetcher {
	if c == nil {
		c = http.DefaultClient
	}
	return &NetFetcher{client: c}
}

// Fetch sends req over the network and buffers the response body.
func (n *NetFetcher) Fetch(req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	hreq, err := req.HTTPRequest()
	if err != nil {
		return nil, err
	}

	hresp, err := n.client.Do(hreq)
	if err != nil {
		return nil, fmt.Errorf("error fetching URL %s: %w", req.URL, err)
	}
	defer func() { _ = hresp.Body.Close() }()

	body, err := io.ReadAll(hresp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	return &Response{
		Status:     http.StatusText(hresp.StatusCode),
		StatusCode: hresp.StatusCode,
		Header:     hresp.Header.Clone(),
		Body:       body,
	}, nil
}

// HTTPRequest converts r into a standard library request.
func (r *Request) HTTPRequest() (*http.Request, error) {
	if r.URL == nil || r.URL.Host == "" {
		return nil, ErrInvalidURL
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	hreq, err := http.NewRequest(r.Method, r.URL.String(), body)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	for k, values := range r.Header {
		for _, v := range values {
			hreq.Header.Add(k, v)
		}
	}
	return hreq, nil
}

// FromHTTPRequest converts a standard library request into a Request,
// consuming its body.
func FromHTTPRequest(hreq *http.Request) (*Request, error) {
	if hreq == nil {
		return nil, ErrNilRequest
	}
	if hreq.URL == nil {
		return nil, ErrInvalidURL
	}

	method := hreq.Method
	if method == "" {
		method = http.MethodGet
	}

	req := &Request{
		Method: method,
		URL:    hreq.URL,
		Header: hreq.Header.Clone(),
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}

	if hreq.Body != nil && hreq.Body != http.NoBody {
		defer func() { _ = hreq.Body.Close() }()
		b, err := io.ReadAll(hreq.Body)
		if err != nil {
			return nil, errors.Join(ErrReadBody, err)
		}
		req.Body = b
	}
	return req, nil
}

// HTTPResponse converts r into a standard library response answering hreq.
func (r *Response) HTTPResponse(hreq *http.Request) *http.Response {
	header := r.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		Status:        strconv.Itoa(r.StatusCode) + " " + r.Status,
		StatusCode:    r.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
		Request:       hreq,
	}
}
