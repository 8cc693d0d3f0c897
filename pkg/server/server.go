package server

import (
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

var ErrAlreadyStarted = errors.New("server already started")

// Server serves a handler in the background. Every accepted connection gets
// its own goroutine, so a hanging request never holds up the others.
type Server struct {
	addr    string
	logger  log.Logger
	httpSrv *http.Server

	mu       sync.Mutex
	ln       net.Listener
	done     chan struct{}
	err      error
	stopOnce sync.Once
	doneOnce sync.Once
}

func New(addr string, handler http.Handler, logger log.Logger) *Server {
	return &Server{
		addr:    addr,
		logger:  logger,
		httpSrv: &http.Server{Handler: handler},
		done:    make(chan struct{}),
	}
}

// Start binds the socket and returns once the server is accepting.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return ErrAlreadyStarted
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		level.Error(s.logger).Log("err", err, "msg", "Could not bind "+s.addr)
		return err
	}
	s.ln = ln
	level.Info(s.logger).Log("transport", "HTTP", "address", ln.Addr().String(), "msg", "listening")

	go func() {
		err := s.httpSrv.Serve(ln)
		if err == http.ErrServerClosed {
			err = nil
		}
		s.finish(err)
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Wait blocks until the server has stopped serving.
func (s *Server) Wait() error {
	<-s.done
	return s.err
}

// Stop closes the listener and every open connection. It may be called more
// than once, later calls are no-ops.
func (s *Server) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		s.mu.Lock()
		started := s.ln != nil
		s.mu.Unlock()

		err = s.httpSrv.Close()
		level.Info(s.logger).Log("msg", "server stopped")
		if !started {
			s.finish(nil)
		}
	})
	return err
}

func (s *Server) finish(err error) {
	s.doneOnce.Do(func() {
		s.err = err
		close(s.done)
	})
}
