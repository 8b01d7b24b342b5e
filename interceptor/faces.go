package interceptor

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tarmac-project/fetchmock/fetch"
	proto "github.com/tarmac-project/protobuf-go/sdk/http"
)

var (
	// ErrUnexpectedCapability is returned by HostCall for capabilities other than httpclient.
	ErrUnexpectedCapability = errors.New("unexpected capability")

	// ErrUnexpectedFunction is returned by HostCall for functions other than call.
	ErrUnexpectedFunction = errors.New("unexpected function")

	// ErrUnmarshalRequest wraps failures while decoding a host request payload.
	ErrUnmarshalRequest = errors.New("failed to unmarshal host request")

	// ErrMarshalResponse wraps failures while encoding a host response payload.
	ErrMarshalResponse = errors.New("failed to marshal host response")
)

// RoundTrip answers a standard library request from the registered rules, so
// the interceptor can serve as an *http.Client transport.
func (i *Interceptor) RoundTrip(hreq *http.Request) (*http.Response, error) {
	req, err := fetch.FromHTTPRequest(hreq)
	if err != nil {
		return nil, err
	}

	resp, err := i.Fetch(req)
	if err != nil {
		return nil, err
	}
	return resp.HTTPResponse(hreq), nil
}

// HostCall answers a waPC httpclient host call from the registered rules. It
// has the host function signature, so it can be handed to a
// fetch.HostFetcher in place of the real host. Any namespace is accepted.
func (i *Interceptor) HostCall(namespace, capability, function string, payload []byte) ([]byte, error) {
	if capability != fetch.HostCapability {
		return nil, fmt.Errorf(
			"%w: expected capability %s, got %s",
			ErrUnexpectedCapability,
			fetch.HostCapability,
			capability,
		)
	}
	if function != fetch.HostFunction {
		return nil, fmt.Errorf("%w: expected function %s, got %s", ErrUnexpectedFunction, fetch.HostFunction, function)
	}

	var pbReq proto.HTTPClient
	if err := pbReq.UnmarshalVT(payload); err != nil {
		return nil, errors.Join(ErrUnmarshalRequest, err)
	}

	req, err := fetch.DecodeHostRequest(&pbReq)
	if err != nil {
		return nil, err
	}

	resp, err := i.Fetch(req)
	if err != nil {
		return nil, err
	}

	b, err := fetch.EncodeHostResponse(resp).MarshalVT()
	if err != nil {
		return nil, errors.Join(ErrMarshalResponse, err)
	}
	return b, nil
}
