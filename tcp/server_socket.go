package tcp

import (
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/beka-birhanu/duo-platformer/game"
	logger "github.com/beka-birhanu/duo-platformer/infrastruture/log"
	"github.com/beka-birhanu/duo-platformer/service/i"
)

type ServerOption func(*ServerSocketManager)

// Custom error types
var (
	ErrBindFailure             = errors.New("bind failure")
	ErrNoConnectionHandler     = errors.New("no connection handler set")
	ErrMaximumPayloadSizeLimit = fmt.Errorf("%w: maximum payload size limit", game.ErrProtocol)
)

const (
	defaultMaxMessageSize int = 1024 * 6
)

// ServerSocketManager accepts TCP connections and runs the connection handler for each
// one in its own goroutine. Handlers are never joined; Stop only ends the accept loop.
type ServerSocketManager struct {
	listener       net.Listener        // Listener to accept from.
	maxMessageSize int                 // Maximum size of one framed message.
	onConnection   i.ConnectionHandler // Handler run for every accepted connection.
	logger         i.Logger            // Logger.
	stopped        atomic.Bool         // Set once Stop is called.
}

// ServerConfig is a struct used to pass the required parameters to initialize a new ServerSocketManager
type ServerConfig struct {
	ListenAddr string // TCP address to listen on, "host:port".
}

// NewServerSocketManager binds the listening socket. A bind error wraps ErrBindFailure.
func NewServerSocketManager(c ServerConfig, options ...ServerOption) (*ServerSocketManager, error) {
	listener, err := net.Listen("tcp", c.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBindFailure, err)
	}

	s := &ServerSocketManager{
		listener: listener,
	}

	// Run optional configurations
	for _, opt := range options {
		opt(s)
	}

	if s.maxMessageSize <= 0 {
		s.maxMessageSize = defaultMaxMessageSize
	}

	if s.logger == nil {
		s.logger = logger.Discard()
	}

	return s, nil
}

// Serve accepts connections until Stop is called. It returns nil after Stop.
func (s *ServerSocketManager) Serve() error {
	if s.onConnection == nil {
		return ErrNoConnectionHandler
	}

	s.logger.Info(fmt.Sprintf("server listening on tcp address: %s", s.Addr()))
	s.logger.Info("looking for connections")
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopped.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error(fmt.Sprintf("error while accepting connection: %s", err))
			continue
		}

		go s.serveConn(NewConn(conn, s.maxMessageSize))
	}
}

func (s *ServerSocketManager) serveConn(c *Conn) {
	defer func() {
		if err := c.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Warning(fmt.Sprintf("error while closing connection %s: %s", c.RemoteAddr(), err))
		}
	}()
	s.onConnection(c)
}

// Stop closes the listening socket, which makes Serve return.
func (s *ServerSocketManager) Stop() error {
	if s.stopped.Swap(true) {
		return nil
	}
	s.logger.Info("closing listening socket and shutting down")
	return s.listener.Close()
}

// Addr returns the bound address, useful when listening on port 0.
func (s *ServerSocketManager) Addr() string {
	return s.listener.Addr().String()
}

// ServerWithConnectionHandler sets the handler run for every accepted connection
func ServerWithConnectionHandler(h i.ConnectionHandler) ServerOption {
	return func(s *ServerSocketManager) {
		s.onConnection = h
	}
}

// ServerWithMaxMessageSize sets the largest accepted message in bytes
func ServerWithMaxMessageSize(n int) ServerOption {
	return func(s *ServerSocketManager) {
		s.maxMessageSize = n
	}
}

// ServerWithLogger sets the logger
func ServerWithLogger(l i.Logger) ServerOption {
	return func(s *ServerSocketManager) {
		s.logger = l
	}
}
