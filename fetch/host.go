package fetch

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tarmac-project/fetchmock"
	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
	proto "github.com/tarmac-project/protobuf-go/sdk/http"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

const (
	// HostCapability is the waPC capability that carries HTTP requests.
	HostCapability = "httpclient"

	// HostFunction is the waPC function invoked for each HTTP request.
	HostFunction = "call"
)

const (
	hostStatusOK       = int32(200)
	hostStatusPartial  = int32(206)
	hostStatusBadInput = int32(400)
	hostStatusMissing  = int32(404)
	hostStatusError    = int32(500)
)

// HostConfig configures a HostFetcher.
//
// SDKConfig supplies the namespace used when making waPC host calls. If the
// Namespace is empty, it defaults to fetchmock.DefaultNamespace during
// NewHostFetcher. HostCall allows tests to inject a custom host function;
// when nil, wapc.HostCall is used.
type HostConfig struct {
	// SDKConfig provides the runtime namespace for host calls.
	SDKConfig fetchmock.RuntimeConfig
	// InsecureSkipVerify disables TLS verification when supported by the host.
	InsecureSkipVerify bool
	// HostCall overrides the waPC host function used for requests.
	HostCall fetchmock.HostCall
}

// HostFetcher performs requests through the Tarmac host's httpclient capability.
type HostFetcher struct {
	cfg      HostConfig
	hostCall fetchmock.HostCall
}

// Ensure HostFetcher always satisfies the Fetcher interface at compile time.
var _ Fetcher = (*HostFetcher)(nil)

// NewHostFetcher creates a Fetcher backed by waPC host calls.
func NewHostFetcher(config HostConfig) (*HostFetcher, error) {
	hf := &HostFetcher{cfg: config}
	hf.cfg.SDKConfig = config.SDKConfig.WithDefaults()

	hf.hostCall = wapc.HostCall
	if config.HostCall != nil {
		hf.hostCall = config.HostCall
	}

	return hf, nil
}

// Fetch marshals req, performs the host call, and unmarshals the host response.
func (h *HostFetcher) Fetch(req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if req.URL == nil || req.URL.Host == "" {
		return nil, ErrInvalidURL
	}

	pbReq := EncodeHostRequest(req)
	pbReq.Insecure = h.cfg.InsecureSkipVerify

	b, err := pbReq.MarshalVT()
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}

	resp, err := h.hostCall(h.cfg.SDKConfig.Namespace, HostCapability, HostFunction, b)
	if err != nil {
		return nil, errors.Join(fetchmock.ErrHostCall, err)
	}

	var r proto.HTTPClientResponse
	if unmarshalErr := r.UnmarshalVT(resp); unmarshalErr != nil {
		return nil, errors.Join(ErrUnmarshalResponse, unmarshalErr)
	}

	status := r.GetStatus()
	if status == nil {
		return nil, fetchmock.ErrHostResponseInvalid
	}

	statusCode := status.GetCode()
	switch statusCode {
	case hostStatusOK, hostStatusPartial:
		// success path continues
	case hostStatusBadInput, hostStatusMissing, hostStatusError:
		detail := fmt.Sprintf("host status %d", statusCode)
		if msg := status.GetStatus(); msg != "" {
			detail = fmt.Sprintf("%s: %s", detail, msg)
		}
		return nil, errors.Join(fetchmock.ErrHostError, errors.New(detail))
	default:
		return nil, errors.Join(
			fetchmock.ErrHostResponseInvalid,
			fmt.Errorf("unexpected host status code %d", statusCode),
		)
	}

	return DecodeHostResponse(&r), nil
}

// EncodeHostRequest converts req into the protobuf payload sent to the host.
func EncodeHostRequest(req *Request) *proto.HTTPClient {
	pbReq := &proto.HTTPClient{
		Method:  req.Method,
		Url:     req.Href(),
		Body:    req.Body,
		Headers: make(map[string]*proto.Header),
	}
	for key, values := range req.Header {
		pbReq.Headers[key] = &proto.Header{Values: values}
	}
	return pbReq
}

// DecodeHostRequest converts a protobuf host payload back into a Request.
func DecodeHostRequest(pbReq *proto.HTTPClient) (*Request, error) {
	u, err := parseURL(pbReq.GetUrl())
	if err != nil {
		return nil, err
	}

	method := pbReq.GetMethod()
	if method == "" {
		method = http.MethodGet
	}

	req := &Request{
		Method: method,
		URL:    u,
		RawURL: pbReq.GetUrl(),
		Header: make(http.Header),
		Body:   pbReq.GetBody(),
	}
	for name, header := range pbReq.GetHeaders() {
		req.Header[name] = header.GetValues()
	}
	return req, nil
}

// EncodeHostResponse converts resp into the protobuf payload a host returns.
// The host status is always OK; the HTTP outcome travels in Code.
func EncodeHostResponse(resp *Response) *proto.HTTPClientResponse {
	out := &proto.HTTPClientResponse{
		Status:  &sdkproto.Status{Status: "OK", Code: hostStatusOK},
		Code:    int32(resp.StatusCode),
		Headers: make(map[string]*proto.Header),
		Body:    resp.Body,
	}
	for name, values := range resp.Header {
		out.Headers[name] = &proto.Header{Values: values}
	}
	return out
}

// DecodeHostResponse converts a protobuf host response into a Response.
func DecodeHostResponse(r *proto.HTTPClientResponse) *Response {
	httpCode := int(r.GetCode())
	out := &Response{
		Status:     http.StatusText(httpCode),
		StatusCode: httpCode,
		Header:     make(http.Header),
	}

	for name, header := range r.GetHeaders() {
		out.Header[name] = header.GetValues()
	}

	if body := r.GetBody(); len(body) > 0 {
		out.Body = body
	}

	return out
}
