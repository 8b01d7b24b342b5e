package interceptor

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/tarmac-project/fetchmock/fetch"
	"github.com/tarmac-project/fetchmock/logging"
	"github.com/tarmac-project/fetchmock/metrics"
	"github.com/tarmac-project/fetchmock/pattern"
	"github.com/tarmac-project/fetchmock/registry"
)

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("no mocked request matches")

// NotFoundError is returned when a dispatched request matches no rule. It
// carries the same fields a real 404 response would expose.
type NotFoundError struct {
	Status     int    `json:"status"`
	OK         bool   `json:"ok"`
	StatusText string `json:"statusText"`
	URL        string `json:"url"`
}

func newNotFoundError(url string) *NotFoundError {
	return &NotFoundError{
		Status:     http.StatusNotFound,
		OK:         false,
		StatusText: http.StatusText(http.StatusNotFound),
		URL:        url,
	}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.StatusText, e.URL)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Config controls construction of an Interceptor.
type Config struct {
	// Client is the fetch entry point to intercept. When nil, a new Client with
	// nothing bound is created; retrieve it with Interceptor.Client.
	Client *fetch.Client

	// HTTPClient, when set, has its Transport replaced while mocks are installed.
	HTTPClient *http.Client

	// Logger receives trace lines for registration and dispatch. Defaults to logging.Nop.
	Logger logging.Client

	// Metrics is notified of registration and dispatch events. Defaults to metrics.Nop.
	Metrics metrics.Recorder
}

// Call captures a single request dispatched to the interceptor.
type Call struct {
	// Method is the HTTP method used.
	Method string
	// URL is the effective request URL.
	URL string
	// Header holds request headers passed by the caller.
	Header http.Header
	// Body contains the request body, if provided.
	Body []byte
	// Matched reports whether a rule answered the request.
	Matched bool
	// Pattern is the canonical pattern string of the rule that answered.
	Pattern string
}

// Interceptor owns a set of mock rules and the fetchers it displaced while
// installed. It answers requests from its rules and is safe for concurrent use.
type Interceptor struct {
	rules   *registry.Registry
	log     logging.Client
	metrics metrics.Recorder

	mu                sync.Mutex
	client            *fetch.Client
	httpClient        *http.Client
	installed         bool
	original          fetch.Fetcher
	originalTransport http.RoundTripper
	calls             []Call
}

// Ensure Interceptor can stand in for both fetch entry points at compile time.
var (
	_ fetch.Fetcher     = (*Interceptor)(nil)
	_ http.RoundTripper = (*Interceptor)(nil)
)

// New creates an uninstalled Interceptor. Nothing is replaced until the first
// rule is registered.
func New(config Config) (*Interceptor, error) {
	i := &Interceptor{
		rules:      registry.New(),
		log:        config.Logger,
		metrics:    config.Metrics,
		client:     config.Client,
		httpClient: config.HTTPClient,
	}

	if i.client == nil {
		i.client = fetch.NewClient(nil)
	}
	if i.log == nil {
		i.log = logging.Nop()
	}
	if i.metrics == nil {
		i.metrics = metrics.Nop()
	}

	return i, nil
}

// Client returns the fetch entry point this interceptor installs into.
func (i *Interceptor) Client() *fetch.Client { return i.client }

// Mock registers target, parsed as a wildcard pattern when it contains "*"
// and as a literal URL otherwise.
func (i *Interceptor) Mock(target string, opts registry.Options) error {
	return i.Register(pattern.Parse(target), opts)
}

// Register adds a rule answering requests that match p. Registering a rule
// whose pattern and init criterion are already registered does nothing. The
// first rule added installs the interceptor.
func (i *Interceptor) Register(p pattern.Pattern, opts registry.Options) error {
	rule, err := registry.NewRule(p, opts)
	if err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	existing, added := i.rules.Insert(rule)
	if !added {
		i.metrics.Duplicate()
		if existing.SameResponse(rule) {
			i.log.Debug(fmt.Sprintf("request already mocked: %s", rule.Matcher))
		} else {
			i.log.Warn(fmt.Sprintf("request already mocked with a different response, keeping the first: %s", rule.Matcher))
		}
		return nil
	}

	i.metrics.Registered()
	i.log.Debug(fmt.Sprintf("registered mocked request %s as %s", p, rule.Matcher))
	i.install()
	return nil
}

// install swaps the interceptor in. Callers hold i.mu.
func (i *Interceptor) install() {
	if i.installed {
		return
	}

	i.original = i.client.Swap(i)
	if i.httpClient != nil {
		i.originalTransport = i.httpClient.Transport
		i.httpClient.Transport = i
	}
	i.installed = true
	i.log.Debug("fetch interceptor installed")
}

// Clear removes every rule and call record and restores the fetchers that
// were replaced on install. It is safe to call when nothing is installed.
func (i *Interceptor) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()

	n := i.rules.Clear()
	i.metrics.Cleared(n)

	i.calls = nil
	if !i.installed {
		return
	}

	i.client.Swap(i.original)
	if i.httpClient != nil {
		i.httpClient.Transport = i.originalTransport
	}
	i.original = nil
	i.originalTransport = nil
	i.installed = false
	i.log.Debug(fmt.Sprintf("fetch interceptor removed, %d mocked requests cleared", n))
}

// Installed reports whether the interceptor currently replaces the fetch entry points.
func (i *Interceptor) Installed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.installed
}

// Len returns the number of registered rules.
func (i *Interceptor) Len() int { return i.rules.Len() }

// Rules returns the registered rules in registration order.
func (i *Interceptor) Rules() []registry.Rule { return i.rules.Rules() }

// Calls returns the requests dispatched since the last Clear.
func (i *Interceptor) Calls() []Call {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Call(nil), i.calls...)
}

// Fetch answers req from the registered rules. A request matching no rule
// fails with a *NotFoundError.
func (i *Interceptor) Fetch(req *fetch.Request) (*fetch.Response, error) {
	if req == nil {
		return nil, fetch.ErrNilRequest
	}
	if req.URL == nil {
		return nil, fetch.ErrInvalidURL
	}

	url := req.Href()
	rule, ok := i.rules.Match(url, req.Init())

	call := Call{
		Method:  req.Method,
		URL:     url,
		Header:  req.Header.Clone(),
		Body:    append([]byte(nil), req.Body...),
		Matched: ok,
	}
	if ok {
		call.Pattern = rule.Matcher.String()
	}
	i.record(call)

	if !ok {
		nf := newNotFoundError(url)
		i.metrics.Missed()
		i.log.Debug(fmt.Sprintf("no mocked request for %s %s: %d %s", req.Method, url, nf.Status, nf.StatusText))
		return nil, nf
	}

	i.metrics.Matched()
	i.log.Debug(fmt.Sprintf("mocked fetch called: %s %s matched %s", req.Method, url, rule.Matcher))
	return rule.Response(), nil
}

func (i *Interceptor) record(c Call) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls = append(i.calls, c)
}
