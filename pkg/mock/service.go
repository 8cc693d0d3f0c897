package mock

import (
	"context"
	"errors"
	"time"

	"github.com/lamassuiot/ocsp-mockserver/pkg/counter"
)

const (
	DefaultOCSPHangDelay         = 300 * time.Second
	DefaultLoginHangDelay        = 2000 * time.Second
	DefaultLoginSuccessThreshold = 3
	DefaultTimeoutAccount        = "jwtAuthTokenTimeout"
	DefaultToken                 = "someToken"
)

var (
	ErrForbidden      = errors.New("ocsp responder forbidden")
	ErrNotFound       = errors.New("ocsp responder not found")
	ErrUnknownAccount = errors.New("unknown account")
	ErrMalformedLogin = errors.New("malformed login request")
)

// OCSPOutcome selects the simulated revocation service behavior.
type OCSPOutcome int

const (
	OCSPGood OCSPOutcome = iota
	OCSPForbidden
	OCSPNotFound
	OCSPHang
)

func (o OCSPOutcome) String() string {
	switch o {
	case OCSPForbidden:
		return "forbidden"
	case OCSPNotFound:
		return "notfound"
	case OCSPHang:
		return "hang"
	default:
		return "good"
	}
}

type Service interface {
	Health(ctx context.Context) bool
	Reset(ctx context.Context)
	Invocations(ctx context.Context) int64
	OCSP(ctx context.Context, outcome OCSPOutcome) error
	Login(ctx context.Context, accountName string) (LoginResult, error)
}

// LoginResult is empty when the login timed out on the mock side.
type LoginResult struct {
	Token string
}

type Config struct {
	OCSPHangDelay         time.Duration
	LoginHangDelay        time.Duration
	LoginSuccessThreshold int64
	TimeoutAccount        string
	Token                 string
}

func DefaultConfig() Config {
	return Config{
		OCSPHangDelay:         DefaultOCSPHangDelay,
		LoginHangDelay:        DefaultLoginHangDelay,
		LoginSuccessThreshold: DefaultLoginSuccessThreshold,
		TimeoutAccount:        DefaultTimeoutAccount,
		Token:                 DefaultToken,
	}
}

type MockServer struct {
	cfg         Config
	invocations counter.Counter
}

func NewService(cfg Config, invocations counter.Counter) Service {
	return &MockServer{cfg: cfg, invocations: invocations}
}

func (m *MockServer) Health(ctx context.Context) bool {
	return true
}

func (m *MockServer) Reset(ctx context.Context) {
	m.invocations.Reset()
}

func (m *MockServer) Invocations(ctx context.Context) int64 {
	return m.invocations.Value()
}

func (m *MockServer) OCSP(ctx context.Context, outcome OCSPOutcome) error {
	switch outcome {
	case OCSPForbidden:
		return ErrForbidden
	case OCSPNotFound:
		return ErrNotFound
	case OCSPHang:
		return sleep(ctx, m.cfg.OCSPHangDelay)
	default:
		return nil
	}
}

func (m *MockServer) Login(ctx context.Context, accountName string) (LoginResult, error) {
	if accountName != m.cfg.TimeoutAccount {
		return LoginResult{}, ErrUnknownAccount
	}
	if m.invocations.Increment() >= m.cfg.LoginSuccessThreshold {
		return LoginResult{Token: m.cfg.Token}, nil
	}
	if err := sleep(ctx, m.cfg.LoginHangDelay); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{}, nil
}

// sleep waits for d unless ctx ends first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
