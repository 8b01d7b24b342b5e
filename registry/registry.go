package registry

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/tarmac-project/fetchmock/fetch"
	"github.com/tarmac-project/fetchmock/pattern"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ErrEncodeData wraps failures while encoding Options.Data into a response body.
var ErrEncodeData = errors.New("failed to encode mock data")

// Options configures the response returned for a matched request.
type Options struct {
	// Data is the value served as the JSON response body. proto.Message
	// values are encoded with protojson, everything else with encoding/json.
	// A nil Data produces an empty body.
	Data any

	// Status is the HTTP status code to return. Zero means 200.
	Status int

	// Header holds response headers. Content-Type defaults to application/json.
	Header http.Header

	// Init, when set, restricts the rule to requests whose init data
	// (method, headers, body) is equal to it.
	Init *fetch.Init
}

// Rule is a registered mock: a compiled pattern, the options it was
// registered with, and the response it serves.
type Rule struct {
	// Matcher tests request URLs.
	Matcher pattern.Matcher
	// Options are the options supplied at registration.
	Options Options

	response fetch.Response
}

// Key returns the identity of the rule: the canonical pattern string plus the
// canonical init criterion.
func (r Rule) Key() string {
	return r.Matcher.String() + "\x00" + r.Options.Init.String()
}

// Response returns a fresh copy of the response the rule serves.
func (r Rule) Response() *fetch.Response {
	resp := r.response
	resp.Header = r.response.Header.Clone()
	resp.Body = append([]byte(nil), r.response.Body...)
	return &resp
}

// SameResponse reports whether r and other serve identical responses.
func (r Rule) SameResponse(other Rule) bool {
	return cmp.Equal(r.response, other.response, cmpopts.EquateEmpty())
}

// Matches reports whether the rule answers a request for url carrying init.
// A rule without an init criterion accepts any init.
func (r Rule) Matches(url string, init *fetch.Init) bool {
	if !r.Matcher.Match(url) {
		return false
	}
	if r.Options.Init == nil {
		return true
	}
	return r.Options.Init.String() == init.String()
}

// NewRule compiles p and pre-builds the response described by opts.
func NewRule(p pattern.Pattern, opts Options) (Rule, error) {
	m, err := p.Compile()
	if err != nil {
		return Rule{}, err
	}

	body, err := encode(opts.Data)
	if err != nil {
		return Rule{}, errors.Join(ErrEncodeData, err)
	}

	status := opts.Status
	if status == 0 {
		status = http.StatusOK
	}

	header := opts.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}

	return Rule{
		Matcher: m,
		Options: opts,
		response: fetch.Response{
			Status:     http.StatusText(status),
			StatusCode: status,
			Header:     header,
			Body:       body,
		},
	}, nil
}

func encode(data any) ([]byte, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case proto.Message:
		return protojson.Marshal(v)
	default:
		return json.Marshal(v)
	}
}

// Registry is an insertion-ordered set of rules. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	rules []Rule
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Add compiles p into a rule and inserts it. See Insert.
func (r *Registry) Add(p pattern.Pattern, opts Options) (Rule, bool, error) {
	rule, err := NewRule(p, opts)
	if err != nil {
		return Rule{}, false, err
	}
	existing, added := r.Insert(rule)
	return existing, added, nil
}

// Insert appends rule unless a rule with the same key is already registered.
// It returns the rule that now answers for the key and whether rule was added.
func (r *Registry) Insert(rule Rule) (Rule, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := rule.Key()
	for _, existing := range r.rules {
		if existing.Key() == key {
			return existing, false
		}
	}

	r.rules = append(r.rules, rule)
	return rule, true
}

// Match returns the first rule, in registration order, that answers a request
// for url carrying init.
func (r *Registry) Match(url string, init *fetch.Init) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rule := range r.rules {
		if rule.Matches(url, init) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Clear removes every rule and returns how many were removed.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.rules)
	r.rules = nil
	return n
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Rules returns a snapshot of the registered rules in registration order.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Rule(nil), r.rules...)
}
