package mock

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/go-kit/kit/tracing/opentracing"

	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	stdopentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gorilla/mux"
)

const (
	ResetPath       = "/reset"
	InvocationsPath = "/invocations"
	OCSPPath        = "/ocsp"
	LoginPath       = "/session/v1/login-request"
	HealthPath      = "/health"
	MetricsPath     = "/metrics"
)

type errorer interface {
	error() error
}

// MakeHTTPHandler routes by path prefix only; the request method is ignored.
// Unrouted requests have their connection dropped without a response unless
// notFound is set, in which case they get a 404.
func MakeHTTPHandler(s Service, logger log.Logger, notFound bool, otTracer stdopentracing.Tracer) http.Handler {
	r := mux.NewRouter()
	e := MakeServerEndpoints(s, otTracer)

	options := []httptransport.ServerOption{
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}

	r.Path(MetricsPath).Handler(promhttp.Handler())

	r.PathPrefix(HealthPath).Handler(httptransport.NewServer(
		e.HealthEndpoint,
		decodeHealthRequest,
		encodeHealthResponse,
		append(options, httptransport.ServerBefore(opentracing.HTTPToContext(otTracer, "Health", logger)))...,
	))

	r.PathPrefix(ResetPath).Handler(httptransport.NewServer(
		e.ResetEndpoint,
		decodeResetRequest,
		encodeEmptyResponse,
		append(options, httptransport.ServerBefore(opentracing.HTTPToContext(otTracer, "Reset", logger)))...,
	))

	r.PathPrefix(InvocationsPath).Handler(httptransport.NewServer(
		e.InvocationsEndpoint,
		decodeInvocationsRequest,
		encodeInvocationsResponse,
		append(options, httptransport.ServerBefore(opentracing.HTTPToContext(otTracer, "Invocations", logger)))...,
	))

	// most specific prefix first, mux picks the first match
	for _, route := range []struct {
		prefix  string
		outcome OCSPOutcome
	}{
		{OCSPPath + "/403", OCSPForbidden},
		{OCSPPath + "/404", OCSPNotFound},
		{OCSPPath + "/hang", OCSPHang},
		{OCSPPath, OCSPGood},
	} {
		r.PathPrefix(route.prefix).Handler(httptransport.NewServer(
			e.OCSPEndpoint,
			decodeOCSPRequest(route.outcome),
			encodeOCSPResponse,
			append(options, httptransport.ServerBefore(opentracing.HTTPToContext(otTracer, "OCSP", logger)))...,
		))
	}

	r.PathPrefix(LoginPath).Handler(httptransport.NewServer(
		e.LoginEndpoint,
		decodeLoginRequest,
		encodeLoginResponse,
		append(options,
			httptransport.ServerBefore(opentracing.HTTPToContext(otTracer, "Login", logger)),
			httptransport.ServerErrorEncoder(encodeLoginError),
		)...,
	))

	r.NotFoundHandler = unrouted(logger, notFound)

	return r
}

func unrouted(logger log.Logger, notFound bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		level.Debug(logger).Log("msg", "No route for request", "method", r.Method, "path", r.URL.Path)
		if notFound {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		panic(http.ErrAbortHandler)
	})
}

func decodeHealthRequest(ctx context.Context, r *http.Request) (request interface{}, err error) {
	var req healthRequest
	return req, nil
}

func decodeResetRequest(ctx context.Context, r *http.Request) (request interface{}, err error) {
	var req resetRequest
	return req, nil
}

func decodeInvocationsRequest(ctx context.Context, r *http.Request) (request interface{}, err error) {
	var req invocationsRequest
	return req, nil
}

func decodeOCSPRequest(outcome OCSPOutcome) httptransport.DecodeRequestFunc {
	return func(ctx context.Context, r *http.Request) (interface{}, error) {
		return ocspRequest{Outcome: outcome}, nil
	}
}

func decodeLoginRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var body struct {
		Data *struct {
			AccountName *string `json:"ACCOUNT_NAME"`
		} `json:"data"`
	}
	raw, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return nil, ErrMalformedLogin
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, ErrMalformedLogin
	}
	if body.Data == nil || body.Data.AccountName == nil {
		return nil, ErrMalformedLogin
	}
	return loginRequest{AccountName: *body.Data.AccountName}, nil
}

func encodeHealthResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

func encodeEmptyResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	w.WriteHeader(http.StatusOK)
	return nil
}

func encodeInvocationsResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(invocationsResponse)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte(strconv.FormatInt(resp.Count, 10)))
	return err
}

func encodeOCSPResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "text/plain")
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	w.WriteHeader(http.StatusOK)
	return nil
}

func encodeLoginResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	resp := response.(loginResponse)
	if resp.Result.Token == "" {
		w.WriteHeader(http.StatusOK)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(loginSuccessBody{
		Data:    loginTokenData{Token: resp.Result.Token},
		Success: true,
	})
}

// encodeLoginError drops the connection on an unparseable login body.
func encodeLoginError(ctx context.Context, err error, w http.ResponseWriter) {
	if err == ErrMalformedLogin {
		panic(http.ErrAbortHandler)
	}
	encodeError(ctx, err, w)
}

// encodeError writes the status only, mocked failures carry no body.
// Delays cut short by the request context drop the connection.
func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		panic("encodeError with nil error")
	}
	if err == context.Canceled || err == context.DeadlineExceeded {
		panic(http.ErrAbortHandler)
	}
	w.WriteHeader(codeFrom(err))
}

func codeFrom(err error) int {
	switch err {
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrMalformedLogin:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
