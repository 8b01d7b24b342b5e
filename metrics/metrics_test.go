package metrics

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tarmac-project/fetchmock"
	proto "github.com/tarmac-project/protobuf-go/sdk/metrics"
)

// event is one decoded metrics host call.
type event struct {
	Function string
	Name     string
	Action   string
}

// captureHost decodes every metrics payload it receives.
type captureHost struct {
	namespaces []string
	events     []event
	err        error
}

func (h *captureHost) HostCall(namespace, capability, function string, payload []byte) ([]byte, error) {
	if capability != capabilityName {
		return nil, errors.New("unexpected capability " + capability)
	}
	h.namespaces = append(h.namespaces, namespace)

	switch function {
	case fnCounter:
		var req proto.MetricsCounter
		if err := req.UnmarshalVT(payload); err != nil {
			return nil, err
		}
		h.events = append(h.events, event{Function: function, Name: req.GetName()})
	case fnGauge:
		var req proto.MetricsGauge
		if err := req.UnmarshalVT(payload); err != nil {
			return nil, err
		}
		h.events = append(h.events, event{Function: function, Name: req.GetName(), Action: req.GetAction()})
	default:
		return nil, errors.New("unexpected function " + function)
	}
	return nil, h.err
}

func TestNew(t *testing.T) {
	t.Parallel()

	customHostCall := func(string, string, string, []byte) ([]byte, error) {
		return nil, nil
	}

	tt := []struct {
		name        string
		namespace   string
		hostCall    fetchmock.HostCall
		wantNS      string
		wantHostPtr uintptr
	}{
		{
			name:      "custom namespace",
			namespace: "custom",
			wantNS:    "custom",
		},
		{
			name:        "default namespace with override",
			hostCall:    customHostCall,
			wantNS:      fetchmock.DefaultNamespace,
			wantHostPtr: reflect.ValueOf(customHostCall).Pointer(),
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, err := New(Config{SDKConfig: fetchmock.RuntimeConfig{Namespace: tc.namespace}, HostCall: tc.hostCall})
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}

			if c.runtime.Namespace != tc.wantNS {
				t.Fatalf("namespace mismatch: want %q, got %q", tc.wantNS, c.runtime.Namespace)
			}

			if tc.wantHostPtr != 0 {
				if got := reflect.ValueOf(c.hostCall).Pointer(); got != tc.wantHostPtr {
					t.Fatalf("hostcall pointer mismatch: want %v, got %v", tc.wantHostPtr, got)
				}
			}
		})
	}
}

func TestMetricConstructors(t *testing.T) {
	t.Parallel()

	c, err := New(Config{HostCall: (&captureHost{}).HostCall})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	tt := []struct {
		name        string
		constructor func(string) error
		metricName  string
		wantErr     error
	}{
		{
			name: "counter valid",
			constructor: func(name string) error {
				_, callErr := c.NewCounter(name)
				return callErr
			},
			metricName: MatchedTotal,
		},
		{
			name: "gauge valid",
			constructor: func(name string) error {
				_, callErr := c.NewGauge(name)
				return callErr
			},
			metricName: ActiveRules,
		},
		{
			name: "counter empty name",
			constructor: func(name string) error {
				_, callErr := c.NewCounter(name)
				return callErr
			},
			metricName: "",
			wantErr:    ErrInvalidMetricName,
		},
		{
			name: "gauge whitespace name",
			constructor: func(name string) error {
				_, callErr := c.NewGauge(name)
				return callErr
			},
			metricName: " \n\t ",
			wantErr:    ErrInvalidMetricName,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gotErr := tc.constructor(tc.metricName)
			if !errors.Is(gotErr, tc.wantErr) {
				t.Fatalf("unexpected error: want %v got %v", tc.wantErr, gotErr)
			}
		})
	}
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	host := &captureHost{err: errors.New("host failure should not panic")}
	m, err := New(Config{SDKConfig: fetchmock.RuntimeConfig{Namespace: "testing"}, HostCall: host.HostCall})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	r, err := NewRecorder(m)
	if err != nil {
		t.Fatalf("NewRecorder returned error: %v", err)
	}

	r.Registered()
	r.Registered()
	r.Duplicate()
	r.Matched()
	r.Missed()
	r.Cleared(2)

	want := []event{
		{Function: fnCounter, Name: RegisteredTotal},
		{Function: fnGauge, Name: ActiveRules, Action: actionInc},
		{Function: fnCounter, Name: RegisteredTotal},
		{Function: fnGauge, Name: ActiveRules, Action: actionInc},
		{Function: fnCounter, Name: DuplicateTotal},
		{Function: fnCounter, Name: MatchedTotal},
		{Function: fnCounter, Name: MissedTotal},
		{Function: fnGauge, Name: ActiveRules, Action: actionDec},
		{Function: fnGauge, Name: ActiveRules, Action: actionDec},
	}
	if diff := cmp.Diff(want, host.events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	for _, ns := range host.namespaces {
		if ns != "testing" {
			t.Fatalf("expected namespace testing, got %q", ns)
		}
	}
}

func TestNop(t *testing.T) {
	t.Parallel()

	r := Nop()
	r.Registered()
	r.Duplicate()
	r.Matched()
	r.Missed()
	r.Cleared(3)
}
