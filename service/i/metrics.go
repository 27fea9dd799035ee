package i

// Metrics receives counters from the request dispatcher.
type Metrics interface {
	ConnectionOpened()
	ConnectionClosed()
	RequestHandled(msgType string)
	ProtocolError()
}
