package metrics

import (
	"errors"
	"regexp"

	"github.com/tarmac-project/fetchmock"
	proto "github.com/tarmac-project/protobuf-go/sdk/metrics"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

const (
	capabilityName = "metrics"
	fnCounter      = "counter"
	fnGauge        = "gauge"
	actionInc      = "inc"
	actionDec      = "dec"
)

// Metric names reported by HostRecorder.
const (
	RegisteredTotal = "fetchmock_rules_registered_total"
	DuplicateTotal  = "fetchmock_rules_duplicate_total"
	MatchedTotal    = "fetchmock_dispatch_matched_total"
	MissedTotal     = "fetchmock_dispatch_missed_total"
	ActiveRules     = "fetchmock_rules_active"
)

var (
	// ErrInvalidMetricName indicates a metric name that does not match the supported format.
	ErrInvalidMetricName = errors.New("metric name is invalid")

	isMetricNameValid = regexp.MustCompile(`^[a-zA-Z0-9_:][a-zA-Z0-9_:]*$`)
)

// Recorder is notified of registry and dispatch events.
type Recorder interface {
	// Registered is called when a new rule is added.
	Registered()
	// Duplicate is called when a registration was ignored as a duplicate.
	Duplicate()
	// Matched is called when a dispatch was answered by a rule.
	Matched()
	// Missed is called when a dispatch matched no rule.
	Missed()
	// Cleared is called with the number of rules removed by a clear.
	Cleared(n int)
}

// Config controls how host metrics interact with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig fetchmock.RuntimeConfig

	// HostCall overrides the waPC host function used for metrics operations.
	HostCall fetchmock.HostCall
}

// HostMetrics creates metric handles that report to the host runtime.
type HostMetrics struct {
	runtime  fetchmock.RuntimeConfig
	hostCall fetchmock.HostCall
}

// Counter is a named counter metric handle.
type Counter struct {
	name      string
	namespace string
	hostCall  fetchmock.HostCall
}

// Gauge is a named gauge metric handle.
type Gauge struct {
	name      string
	namespace string
	hostCall  fetchmock.HostCall
}

// New creates a metrics client with namespace defaults and optional host-call override.
func New(config Config) (*HostMetrics, error) {
	hostCall := config.HostCall
	if hostCall == nil {
		hostCall = wapc.HostCall
	}

	return &HostMetrics{runtime: config.SDKConfig.WithDefaults(), hostCall: hostCall}, nil
}

// NewCounter creates a named counter metric handle.
func (c *HostMetrics) NewCounter(name string) (*Counter, error) {
	if !isMetricNameValid.MatchString(name) {
		return nil, ErrInvalidMetricName
	}

	return &Counter{name: name, namespace: c.runtime.Namespace, hostCall: c.hostCall}, nil
}

// NewGauge creates a named gauge metric handle.
func (c *HostMetrics) NewGauge(name string) (*Gauge, error) {
	if !isMetricNameValid.MatchString(name) {
		return nil, ErrInvalidMetricName
	}

	return &Gauge{name: name, namespace: c.runtime.Namespace, hostCall: c.hostCall}, nil
}

// Inc increments the counter by one. Failures are dropped.
func (c *Counter) Inc() {
	payload, err := (&proto.MetricsCounter{Name: c.name}).MarshalVT()
	if err != nil {
		return
	}
	_, _ = c.hostCall(c.namespace, capabilityName, fnCounter, payload)
}

// Inc increments the gauge by one.
func (g *Gauge) Inc() { g.emit(actionInc) }

// Dec decrements the gauge by one.
func (g *Gauge) Dec() { g.emit(actionDec) }

func (g *Gauge) emit(action string) {
	payload, err := (&proto.MetricsGauge{Name: g.name, Action: action}).MarshalVT()
	if err != nil {
		return
	}
	_, _ = g.hostCall(g.namespace, capabilityName, fnGauge, payload)
}

// HostRecorder reports registry and dispatch events as host metrics.
type HostRecorder struct {
	registered *Counter
	duplicate  *Counter
	matched    *Counter
	missed     *Counter
	active     *Gauge
}

// Ensure HostRecorder satisfies the Recorder interface at compile time.
var _ Recorder = (*HostRecorder)(nil)

// NewRecorder creates the fetchmock metric handles on m.
func NewRecorder(m *HostMetrics) (*HostRecorder, error) {
	r := &HostRecorder{}
	var err error

	counters := []struct {
		name   string
		target **Counter
	}{
		{RegisteredTotal, &r.registered},
		{DuplicateTotal, &r.duplicate},
		{MatchedTotal, &r.matched},
		{MissedTotal, &r.missed},
	}
	for _, c := range counters {
		if *c.target, err = m.NewCounter(c.name); err != nil {
			return nil, err
		}
	}

	if r.active, err = m.NewGauge(ActiveRules); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *HostRecorder) Registered() {
	r.registered.Inc()
	r.active.Inc()
}

func (r *HostRecorder) Duplicate() { r.duplicate.Inc() }
func (r *HostRecorder) Matched()   { r.matched.Inc() }
func (r *HostRecorder) Missed()    { r.missed.Inc() }

func (r *HostRecorder) Cleared(n int) {
	for range n {
		r.active.Dec()
	}
}

type nopRecorder struct{}

// Nop returns a Recorder that ignores every event.
func Nop() Recorder { return nopRecorder{} }

func (nopRecorder) Registered() {}
func (nopRecorder) Duplicate()  {}
func (nopRecorder) Matched()    {}
func (nopRecorder) Missed()     {}
func (nopRecorder) Cleared(int) {}
