package tcp

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"sync"

	"github.com/beka-birhanu/duo-platformer/service/i"
)

var _ i.Conn = &Conn{}

// Conn frames a stream connection as newline-delimited messages.
type Conn struct {
	conn           net.Conn
	reader         *bufio.Reader
	maxMessageSize int
	writeLock      sync.Mutex
	closeOnce      sync.Once
	closeErr       error
}

// NewConn wraps conn. Messages longer than maxMessageSize bytes, not counting the line
// ending, are rejected.
func NewConn(conn net.Conn, maxMessageSize int) *Conn {
	if maxMessageSize <= 0 {
		maxMessageSize = defaultMaxMessageSize
	}
	return &Conn{
		conn:           conn,
		reader:         bufio.NewReaderSize(conn, maxMessageSize+len("\r\n")),
		maxMessageSize: maxMessageSize,
	}
}

// Receive implements i.Conn. An oversized message is consumed up to its newline and
// reported as ErrMaximumPayloadSizeLimit so the stream stays in sync.
func (c *Conn) Receive() ([]byte, error) {
	var msg []byte
	tooLarge := false
	for {
		line, err := c.reader.ReadSlice('\n')
		if !tooLarge {
			msg = append(msg, line...)
		}

		switch {
		case err == nil:
			msg = bytes.TrimRight(msg, "\r\n")
			if tooLarge || len(msg) > c.maxMessageSize {
				return nil, ErrMaximumPayloadSizeLimit
			}
			return msg, nil
		case errors.Is(err, bufio.ErrBufferFull):
			if len(msg) > c.maxMessageSize {
				tooLarge = true
				msg = nil
			}
			continue
		default:
			// A peer that closes mid-message never completes it.
			return nil, err
		}
	}
}

// Send implements i.Conn.
func (c *Conn) Send(msg []byte) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	buf := make([]byte, 0, len(msg)+1)
	buf = append(buf, msg...)
	buf = append(buf, '\n')
	_, err := c.conn.Write(buf)
	return err
}

// Close implements i.Conn. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// RemoteAddr implements i.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
