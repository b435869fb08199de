// Package server implements the TCP front end: it
// accepts connections, decodes one Request after another off each one using
// internal/protocol, dispatches the work onto internal/workerpool, and
// writes back the matching Response. It is grounded on the reference
// implementation's KvsServer (original_source/src/bin/kvs-server.rs), adapted
// from its non-blocking accept-loop-plus-shutdown-flag shape to Go's
// idiomatic net.Listener.Close()-unblocks-Accept() shutdown pattern.
package server

import (
	"errors"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/iamNilotpal/ignite/internal/engine"
	"github.com/iamNilotpal/ignite/internal/protocol"
	"github.com/iamNilotpal/ignite/internal/workerpool"
)

// Server binds a TCP listener and dispatches every accepted connection's
// requests against a KVEngine through a fixed worker pool.
type Server struct {
	addr     string
	listener net.Listener
	engine   engine.KVEngine
	pool     *workerpool.Pool
	log      *zap.SugaredLogger

	wg sync.WaitGroup
}

// Config holds everything needed to start a Server.
type Config struct {
	Addr    string
	Engine  engine.KVEngine
	Workers int
	Logger  *zap.SugaredLogger
}

// New binds addr and returns a Server ready for Serve.
func New(config *Config) (*Server, error) {
	listener, err := net.Listen("tcp", config.Addr)
	if err != nil {
		return nil, err
	}

	return &Server{
		addr:     config.Addr,
		listener: listener,
		engine:   config.Engine,
		pool:     workerpool.New(config.Workers, config.Logger),
		log:      config.Logger,
	}, nil
}

// Addr returns the address the server is actually bound to, useful when the
// caller asked for port 0 and wants to know what was assigned.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve accepts connections until the listener is closed by Shutdown,
// dispatching each one to the worker pool. It returns nil once Shutdown has
// closed the listener, and any other Accept error otherwise.
func (s *Server) Serve() error {
	s.log.Infow("server started, waiting for connections", "addr", s.addr)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.log.Infow("listener closed, no longer accepting connections")
				return nil
			}
			return err
		}

		s.wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer s.wg.Done()
			s.handleConn(conn)
		})
		if submitErr != nil {
			s.wg.Done()
			_ = conn.Close()
		}
	}
}

// Shutdown stops accepting new connections and blocks until every
// in-flight connection handler and worker has finished.
func (s *Server) Shutdown() error {
	err := s.listener.Close()
	s.wg.Wait()
	s.pool.Close()
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	reader := protocol.NewReader(conn)
	writer := protocol.NewWriter(conn)

	for {
		req, err := reader.ReadRequest()
		if err != nil {
			if err != io.EOF {
				s.log.Warnw("failed to decode request", "error", err, "remote", conn.RemoteAddr())
			}
			return
		}
		s.log.Debugw("received request", "kind", req.Kind, "key", req.Key)

		resp := s.dispatch(req)
		if err := writer.WriteResponse(resp); err != nil {
			s.log.Warnw("failed to write response", "error", err, "remote", conn.RemoteAddr())
			return
		}
	}
}

func (s *Server) dispatch(req protocol.Request) protocol.Response {
	switch req.Kind {
	case protocol.RequestSet:
		if err := s.engine.Set(req.Key, req.Value); err != nil {
			return protocol.ErrResponse(err.Error())
		}
		return protocol.OkResponse()

	case protocol.RequestGet:
		value, ok, err := s.engine.Get(req.Key)
		if err != nil {
			return protocol.ErrResponse(err.Error())
		}
		if !ok {
			return protocol.ValueResponse(nil)
		}
		return protocol.ValueResponse(&value)

	case protocol.RequestRemove:
		if err := s.engine.Remove(req.Key); err != nil {
			return protocol.ErrResponse(err.Error())
		}
		return protocol.OkResponse()

	default:
		return protocol.ErrResponse("unknown request kind")
	}
}
