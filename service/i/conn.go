package i

// Conn is one client connection carrying whole messages in both directions.
type Conn interface {
	// Receive blocks until the next message arrives. It returns an error wrapping
	// io.EOF or net.ErrClosed once the peer is gone.
	Receive() ([]byte, error)

	// Send writes one message.
	Send([]byte) error

	Close() error

	RemoteAddr() string
}

// ConnectionHandler serves a connection until it ends.
type ConnectionHandler func(Conn)
