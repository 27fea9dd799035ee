package game

import (
	"errors"

	"github.com/google/uuid"
)

// Session-related errors.
var (
	ErrRoomFull = errors.New("room is full")
	ErrProtocol = errors.New("protocol error")
)

// Request type discriminants.
const (
	TypeMenu    = "menu"
	TypeRace    = "ingame-race"
	TypeEndless = "ingame-endless"
)

const (
	maxPlayers = 2 // Players per match.

	MaxNameLength = 12 // Longest display name in runes.
)

// PlayerID identifies one connection for its whole lifetime.
type PlayerID int64

// Mode is the selected match variant.
type Mode bool

const (
	ModeEndless Mode = false
	ModeRace    Mode = true
)

func (m Mode) String() string {
	if m == ModeRace {
		return "race"
	}
	return "endless"
}

// Block is the coordinate of one destructible block.
type Block struct {
	X int
	Y int
}

// Position is a player position reported by a race client.
type Position struct {
	X int
	Y int
}

// EndlessStatus is the informational per-player state of an endless match.
type EndlessStatus struct {
	Y     int
	Score int
	Name  string
	Lost  bool
}

// Request is one decoded client message. It is one of MenuUpdate, RaceUpdate or EndlessUpdate.
type Request interface {
	Type() string
}

// MenuUpdate is a lobby message.
type MenuUpdate struct {
	Name       string
	Ready      bool
	Started    bool
	ChangeMode bool
	Mode       Mode
}

// Type implements Request.
func (MenuUpdate) Type() string { return TypeMenu }

// RaceUpdate is an in-match race message. Setup and InitBlocks select the load-phase
// branches; a message with neither is a steady-state tick.
type RaceUpdate struct {
	Setup      bool
	InitBlocks bool
	Blocks     []Block
	Player     Position
	Quit       bool
	Win        bool
}

// Type implements Request.
func (RaceUpdate) Type() string { return TypeRace }

// Steady reports whether u is a regular tick rather than a load-phase message.
func (u RaceUpdate) Steady() bool {
	return !u.Setup && !u.InitBlocks
}

// EndlessUpdate is an in-match endless message.
type EndlessUpdate struct {
	Y     int
	Score int
	Lose  bool
}

// Type implements Request.
func (EndlessUpdate) Type() string { return TypeEndless }

// RaceResult is produced the first time a player reports a race win.
type RaceResult struct {
	MatchID uuid.UUID
	Winner  string
	Loser   string
}

// EndlessResult is produced the first time a player reports losing an endless run.
type EndlessResult struct {
	Name  string
	Score int
}
