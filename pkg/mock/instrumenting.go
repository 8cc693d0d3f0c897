package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/metrics"
)

type instrumentingMiddleware struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	next           Service
}

func NewInstrumentingMiddleware(counter metrics.Counter, latency metrics.Histogram) Middleware {
	return func(next Service) Service {
		return &instrumentingMiddleware{
			requestCount:   counter,
			requestLatency: latency,
			next:           next,
		}
	}
}

func (mw *instrumentingMiddleware) observe(method string, err error, begin time.Time) {
	lvs := []string{"method", method, "error", fmt.Sprint(err != nil)}
	mw.requestCount.With(lvs...).Add(1)
	mw.requestLatency.With(lvs...).Observe(time.Since(begin).Seconds())
}

func (mw *instrumentingMiddleware) Health(ctx context.Context) bool {
	defer mw.observe("Health", nil, time.Now())
	return mw.next.Health(ctx)
}

func (mw *instrumentingMiddleware) Reset(ctx context.Context) {
	defer mw.observe("Reset", nil, time.Now())
	mw.next.Reset(ctx)
}

func (mw *instrumentingMiddleware) Invocations(ctx context.Context) int64 {
	defer mw.observe("Invocations", nil, time.Now())
	return mw.next.Invocations(ctx)
}

func (mw *instrumentingMiddleware) OCSP(ctx context.Context, outcome OCSPOutcome) (err error) {
	defer func(begin time.Time) {
		mw.observe("OCSP", err, begin)
	}(time.Now())
	return mw.next.OCSP(ctx, outcome)
}

func (mw *instrumentingMiddleware) Login(ctx context.Context, accountName string) (res LoginResult, err error) {
	defer func(begin time.Time) {
		mw.observe("Login", err, begin)
	}(time.Now())
	return mw.next.Login(ctx, accountName)
}
