package fetch

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// Client is the fetch entry point that code under test holds on to. It
// forwards every request to the bound Fetcher, which can be swapped at
// runtime; that swap is how interception is installed and removed.
type Client struct {
	mu      sync.RWMutex
	fetcher Fetcher
}

// Ensure Client can itself be used wherever a Fetcher is expected.
var _ Fetcher = (*Client)(nil)

// NewClient returns a Client bound to f. A nil f is allowed; requests then
// fail with ErrNoFetcher until something is bound.
func NewClient(f Fetcher) *Client {
	return &Client{fetcher: f}
}

// Fetcher returns the currently bound Fetcher.
func (c *Client) Fetcher() Fetcher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetcher
}

// Swap binds f and returns the Fetcher that was bound before.
func (c *Client) Swap(f Fetcher) Fetcher {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.fetcher
	c.fetcher = f
	return prev
}

// Fetch dispatches req to the bound Fetcher.
func (c *Client) Fetch(req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	f := c.Fetcher()
	if f == nil {
		return nil, ErrNoFetcher
	}
	return f.Fetch(req)
}

// Do fetches urlStr with optional init data, the way a fetch(url, init) call would.
func (c *Client) Do(urlStr string, init *Init) (*Response, error) {
	method := http.MethodGet
	var body io.Reader
	if init != nil {
		if init.Method != "" {
			method = init.Method
		}
		if init.Body != nil {
			body = bytes.NewReader(init.Body)
		}
	}

	req, err := NewRequest(method, urlStr, body)
	if err != nil {
		return nil, err
	}
	if init != nil {
		for k, values := range init.Header {
			for _, v := range values {
				req.Header.Add(k, v)
			}
		}
	}
	return c.Fetch(req)
}

// Get issues a GET to the specified URL.
func (c *Client) Get(urlStr string) (*Response, error) {
	return c.send(http.MethodGet, urlStr, "", nil)
}

// Post issues a POST to the URL with the provided contentType and body.
func (c *Client) Post(urlStr, contentType string, body io.Reader) (*Response, error) {
	return c.send(http.MethodPost, urlStr, contentType, body)
}

// Put issues a PUT to the URL with the provided contentType and body.
func (c *Client) Put(urlStr, contentType string, body io.Reader) (*Response, error) {
	return c.send(http.MethodPut, urlStr, contentType, body)
}

// Delete issues a DELETE to the specified URL.
func (c *Client) Delete(urlStr string) (*Response, error) {
	return c.send(http.MethodDelete, urlStr, "", nil)
}

func (c *Client) send(method, urlStr, contentType string, body io.Reader) (*Response, error) {
	req, err := NewRequest(method, urlStr, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.Fetch(req)
}
