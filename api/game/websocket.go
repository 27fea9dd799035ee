package gameapi

import (
	"bytes"
	"sync"

	"github.com/beka-birhanu/duo-platformer/service/i"
	"github.com/gorilla/websocket"
)

var _ i.Conn = &wsConn{}

// wsConn carries one protocol message per WebSocket frame.
type wsConn struct {
	conn      *websocket.Conn
	writeLock sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func newWSConn(conn *websocket.Conn, maxMessageSize int) *wsConn {
	conn.SetReadLimit(int64(maxMessageSize))
	return &wsConn{conn: conn}
}

// Receive implements i.Conn. Frames over the read limit fail the connection.
func (c *wsConn) Receive() ([]byte, error) {
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(msg, "\r\n"), nil
}

// Send implements i.Conn.
func (c *wsConn) Send(msg []byte) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Close implements i.Conn.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// RemoteAddr implements i.Conn.
func (c *wsConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
