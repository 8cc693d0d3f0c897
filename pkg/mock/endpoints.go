package mock

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/tracing/opentracing"
	stdopentracing "github.com/opentracing/opentracing-go"
)

type Endpoints struct {
	HealthEndpoint      endpoint.Endpoint
	ResetEndpoint       endpoint.Endpoint
	InvocationsEndpoint endpoint.Endpoint
	OCSPEndpoint        endpoint.Endpoint
	LoginEndpoint       endpoint.Endpoint
}

func MakeServerEndpoints(s Service, otTracer stdopentracing.Tracer) Endpoints {
	var healthEndpoint endpoint.Endpoint
	{
		healthEndpoint = MakeHealthEndpoint(s)
		healthEndpoint = opentracing.TraceServer(otTracer, "Health")(healthEndpoint)
	}
	var resetEndpoint endpoint.Endpoint
	{
		resetEndpoint = MakeResetEndpoint(s)
		resetEndpoint = opentracing.TraceServer(otTracer, "Reset")(resetEndpoint)
	}
	var invocationsEndpoint endpoint.Endpoint
	{
		invocationsEndpoint = MakeInvocationsEndpoint(s)
		invocationsEndpoint = opentracing.TraceServer(otTracer, "Invocations")(invocationsEndpoint)
	}
	var ocspEndpoint endpoint.Endpoint
	{
		ocspEndpoint = MakeOCSPEndpoint(s)
		ocspEndpoint = opentracing.TraceServer(otTracer, "OCSP")(ocspEndpoint)
	}
	var loginEndpoint endpoint.Endpoint
	{
		loginEndpoint = MakeLoginEndpoint(s)
		loginEndpoint = opentracing.TraceServer(otTracer, "Login")(loginEndpoint)
	}
	return Endpoints{
		HealthEndpoint:      healthEndpoint,
		ResetEndpoint:       resetEndpoint,
		InvocationsEndpoint: invocationsEndpoint,
		OCSPEndpoint:        ocspEndpoint,
		LoginEndpoint:       loginEndpoint,
	}
}

func MakeHealthEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		healthy := s.Health(ctx)
		return healthResponse{Healthy: healthy}, nil
	}
}

func MakeResetEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		s.Reset(ctx)
		return resetResponse{}, nil
	}
}

func MakeInvocationsEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		return invocationsResponse{Count: s.Invocations(ctx)}, nil
	}
}

func MakeOCSPEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(ocspRequest)
		err = s.OCSP(ctx, req.Outcome)
		return ocspResponse{Err: err}, nil
	}
}

func MakeLoginEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(loginRequest)
		res, err := s.Login(ctx, req.AccountName)
		return loginResponse{Result: res, Err: err}, nil
	}
}

type healthRequest struct{}

type healthResponse struct {
	Healthy bool  `json:"healthy,omitempty"`
	Err     error `json:"err,omitempty"`
}

type resetRequest struct{}

type resetResponse struct{}

type invocationsRequest struct{}

type invocationsResponse struct {
	Count int64
}

type ocspRequest struct {
	Outcome OCSPOutcome
}

type ocspResponse struct {
	Err error
}

func (r ocspResponse) error() error { return r.Err }

type loginRequest struct {
	AccountName string
}

type loginResponse struct {
	Result LoginResult
	Err    error
}

func (r loginResponse) error() error { return r.Err }

type loginTokenData struct {
	Token string `json:"token"`
}

type loginSuccessBody struct {
	Data    loginTokenData `json:"data"`
	Success bool           `json:"success"`
}
