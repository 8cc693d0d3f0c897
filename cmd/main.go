// Copyright 2016 SMFS Inc DBA GRIMM. All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/lamassuiot/ocsp-mockserver/pkg/counter/memory"
	"github.com/lamassuiot/ocsp-mockserver/pkg/discovery/consul"
	"github.com/lamassuiot/ocsp-mockserver/pkg/mock"
	"github.com/lamassuiot/ocsp-mockserver/pkg/server"
	stdopentracing "github.com/opentracing/opentracing-go"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	jaeger "github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

func main() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	os.Exit(run(os.Args, os.Stdout, stop))
}

// run serves until stop fires or the server dies and returns the exit code.
func run(args []string, stdout io.Writer, stop <-chan os.Signal) int {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		fmt.Fprintf(stdout, "Usage: %s [flags] PORT\n", args[0])
		fs.PrintDefaults()
	}
	var (
		flAddress        = fs.String("bind", "localhost", "bind address")
		flOCSPHang       = fs.Duration("ocsp-hang", mock.DefaultOCSPHangDelay, "delay before /ocsp/hang answers")
		flLoginHang      = fs.Duration("login-hang", mock.DefaultLoginHangDelay, "delay before a failing login answers")
		flLoginThreshold = fs.Int64("login-threshold", mock.DefaultLoginSuccessThreshold, "login attempt that first succeeds")
		flNotFound       = fs.Bool("notfound", false, "answer unrouted paths with 404 instead of dropping the connection")
		flJaegerAgent    = fs.String("jaeger-agent", "", "Jaeger agent host:port, tracing is disabled when empty")
		flConsulAddress  = fs.String("consul-addr", "", "Consul agent address to register with, e.g. http://127.0.0.1:8500")
		flDebug          = fs.Bool("debug", false, "enable debug logging")
	)
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	port, err := strconv.Atoi(fs.Arg(0))
	if err != nil || port < 0 || port > 65535 {
		fs.Usage()
		return 2
	}

	var logger log.Logger
	{
		logger = log.NewJSONLogger(stdout)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
		if *flDebug {
			logger = level.NewFilter(logger, level.AllowDebug())
		} else {
			logger = level.NewFilter(logger, level.AllowInfo())
		}
	}

	var tracer stdopentracing.Tracer = stdopentracing.NoopTracer{}
	if *flJaegerAgent != "" {
		jcfg := jaegercfg.Configuration{
			ServiceName: consul.ServiceName,
			Sampler: &jaegercfg.SamplerConfig{
				Type:  jaeger.SamplerTypeConst,
				Param: 1,
			},
			Reporter: &jaegercfg.ReporterConfig{
				LocalAgentHostPort: *flJaegerAgent,
			},
		}
		t, closer, err := jcfg.NewTracer()
		if err != nil {
			level.Error(logger).Log("err", err, "msg", "Could not start Jaeger tracer")
			return 1
		}
		defer closer.Close()
		tracer = t
		level.Info(logger).Log("msg", "Jaeger tracer started")
	}
	fieldKeys := []string{"method", "error"}

	cfg := mock.DefaultConfig()
	cfg.OCSPHangDelay = *flOCSPHang
	cfg.LoginHangDelay = *flLoginHang
	cfg.LoginSuccessThreshold = *flLoginThreshold

	var svc mock.Service
	{
		svc = mock.NewService(cfg, memory.NewCounter())
		svc = mock.LoggingMiddleware(logger)(svc)
		svc = mock.NewInstrumentingMiddleware(
			kitprometheus.NewCounter(registerCounterVec(stdprometheus.CounterOpts{
				Namespace: "ocsp_mockserver",
				Subsystem: "mock",
				Name:      "request_count",
				Help:      "Number of requests received.",
			}, fieldKeys)),
			kitprometheus.NewSummary(registerSummaryVec(stdprometheus.SummaryOpts{
				Namespace: "ocsp_mockserver",
				Subsystem: "mock",
				Name:      "request_latency_seconds",
				Help:      "Total duration of requests in seconds.",
			}, fieldKeys)),
		)(svc)
	}

	h := mock.MakeHTTPHandler(svc, log.With(logger, "component", "HTTP"), *flNotFound, tracer)

	srv := server.New(net.JoinHostPort(*flAddress, strconv.Itoa(port)), h, logger)
	if err := srv.Start(); err != nil {
		level.Error(logger).Log("err", err, "msg", "Could not start HTTP server")
		fmt.Fprintf(stdout, "Could not listen on PORT %d: %v\n", port, err)
		return 1
	}
	defer srv.Stop()

	boundPort := port
	if tcpAddr, ok := srv.Addr().(*net.TCPAddr); ok {
		boundPort = tcpAddr.Port
	}
	fmt.Fprintf(stdout, "HTTP Server Running on PORT %d..........\n", boundPort)

	if *flConsulAddress != "" {
		consulsd, err := consul.NewServiceDiscovery(*flConsulAddress, logger)
		if err != nil {
			level.Error(logger).Log("err", err, "msg", "Could not start connection with Consul Service Discovery")
			return 1
		}
		if err := consulsd.Register("http", *flAddress, strconv.Itoa(boundPort)); err != nil {
			level.Error(logger).Log("err", err, "msg", "Could not register with Consul Service Discovery")
			return 1
		}
		defer consulsd.Deregister()
		level.Info(logger).Log("msg", "Registered with Consul Service Discovery")
	}

	errs := make(chan error, 2)
	go func() {
		errs <- fmt.Errorf("%s", <-stop)
	}()
	go func() {
		errs <- srv.Wait()
	}()

	level.Info(logger).Log("exit", <-errs)
	return 0
}

// registerCounterVec registers on the default registry, reusing a collector
// that is already there.
func registerCounterVec(opts stdprometheus.CounterOpts, labelNames []string) *stdprometheus.CounterVec {
	cv := stdprometheus.NewCounterVec(opts, labelNames)
	if err := stdprometheus.Register(cv); err != nil {
		if are, ok := err.(stdprometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*stdprometheus.CounterVec)
		}
		panic(err)
	}
	return cv
}

func registerSummaryVec(opts stdprometheus.SummaryOpts, labelNames []string) *stdprometheus.SummaryVec {
	sv := stdprometheus.NewSummaryVec(opts, labelNames)
	if err := stdprometheus.Register(sv); err != nil {
		if are, ok := err.(stdprometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*stdprometheus.SummaryVec)
		}
		panic(err)
	}
	return sv
}
