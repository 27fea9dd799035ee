package game

// Encoder converts between wire messages and session types.
type Encoder interface {
	// UnmarshalRequest decodes one client message. Any decoding or validation failure
	// wraps ErrProtocol.
	UnmarshalRequest([]byte) (Request, error)

	// MarshalSnapshot encodes the reply sent after every request.
	MarshalSnapshot(Snapshot) ([]byte, error)

	// MarshalPlayerID encodes the first message of a connection.
	MarshalPlayerID(PlayerID) ([]byte, error)

	// MarshalError encodes a protocol error reply.
	MarshalError(error) ([]byte, error)
}
