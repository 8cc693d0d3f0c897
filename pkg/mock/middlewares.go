package mock

import (
	"time"

	"github.com/go-kit/kit/log"

	"context"
)

type Middleware func(Service) Service

func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return &loggingMiddleware{
			next:   next,
			logger: logger,
		}
	}
}

type loggingMiddleware struct {
	next   Service
	logger log.Logger
}

func (mw loggingMiddleware) Health(ctx context.Context) (healthy bool) {
	defer func(begin time.Time) {
		mw.logger.Log(
			"method", "Health",
			"healthy", healthy,
			"took", time.Since(begin),
		)
	}(time.Now())
	return mw.next.Health(ctx)
}

func (mw loggingMiddleware) Reset(ctx context.Context) {
	defer func(begin time.Time) {
		mw.logger.Log(
			"method", "Reset",
			"took", time.Since(begin),
		)
	}(time.Now())
	mw.next.Reset(ctx)
}

func (mw loggingMiddleware) Invocations(ctx context.Context) (n int64) {
	defer func(begin time.Time) {
		mw.logger.Log(
			"method", "Invocations",
			"invocations", n,
			"took", time.Since(begin),
		)
	}(time.Now())
	return mw.next.Invocations(ctx)
}

func (mw loggingMiddleware) OCSP(ctx context.Context, outcome OCSPOutcome) (err error) {
	defer func(begin time.Time) {
		mw.logger.Log(
			"method", "OCSP",
			"outcome", outcome,
			"took", time.Since(begin),
			"err", err)
	}(time.Now())
	return mw.next.OCSP(ctx, outcome)
}

func (mw loggingMiddleware) Login(ctx context.Context, accountName string) (res LoginResult, err error) {
	defer func(begin time.Time) {
		mw.logger.Log(
			"method", "Login",
			"account", accountName,
			"success", res.Token != "",
			"took", time.Since(begin),
			"err", err)
	}(time.Now())
	return mw.next.Login(ctx, accountName)
}
