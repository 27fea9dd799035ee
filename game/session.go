package game

import (
	"maps"
	"sync"

	"github.com/google/uuid"
)

// blockPhase tracks how reported block sets are merged into the shared set.
type blockPhase int

const (
	blocksUnseeded     blockPhase = iota // No report yet. The first steady report seeds the set.
	blocksLoading                        // initBlocks reports are unioned.
	blocksIntersecting                   // Steady reports are intersected. initBlocks is ignored.
)

// Snapshot is a deep copy of the session taken inside the critical section of a mutation.
type Snapshot struct {
	Full           bool
	Mode           Mode
	Players        map[PlayerID]string
	PlayersRace    map[PlayerID]Position
	PlayersEndless map[PlayerID]EndlessStatus
	Blocks         []Block
	Ready          map[PlayerID]bool
	Start          bool
	Started        map[PlayerID]bool
	P1             *PlayerID
	P2             *PlayerID
	Quit           map[PlayerID]bool
	Win            map[PlayerID]bool
	Match          uuid.UUID // uuid.Nil until slots are assigned.
}

// Session is the shared record of the lobby and the running match for up to two players.
// All methods are safe for concurrent use; each one applies its mutation and takes the
// returned snapshot under the same lock.
type Session struct {
	full           bool
	mode           Mode
	start          bool
	players        map[PlayerID]string
	ready          map[PlayerID]bool
	started        map[PlayerID]bool
	playersRace    map[PlayerID]Position
	playersEndless map[PlayerID]EndlessStatus
	quit           map[PlayerID]bool
	win            map[PlayerID]bool
	blocks         BlockSet
	phase          blockPhase
	p1, p2         PlayerID
	slotsAssigned  bool
	matchID        uuid.UUID
	sync.RWMutex
}

// NewSession returns an empty session in the lobby.
func NewSession() *Session {
	return &Session{
		players:        make(map[PlayerID]string),
		ready:          make(map[PlayerID]bool),
		started:        make(map[PlayerID]bool),
		playersRace:    make(map[PlayerID]Position),
		playersEndless: make(map[PlayerID]EndlessStatus),
		quit:           make(map[PlayerID]bool),
		win:            make(map[PlayerID]bool),
		blocks:         make(BlockSet),
	}
}

// UpdateMenu upserts the caller's lobby entry. A caller that is not on a full roster is
// not added; it gets the snapshot together with ErrRoomFull.
func (s *Session) UpdateMenu(id PlayerID, m MenuUpdate) (Snapshot, error) {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.players[id]; !ok && len(s.players) >= maxPlayers {
		return s.snapshot(), ErrRoomFull
	}

	s.players[id] = m.Name
	s.ready[id] = m.Ready
	s.started[id] = m.Started
	if m.ChangeMode {
		s.mode = m.Mode
	}
	s.refreshLobby()

	return s.snapshot(), nil
}

// SetupRace assigns the race slots on the first call after the room filled: the caller
// becomes p1 and the other player p2. Later calls leave the slots untouched.
func (s *Session) SetupRace(id PlayerID) Snapshot {
	s.Lock()
	defer s.Unlock()

	if s.slotsAssigned || !s.full {
		return s.snapshot()
	}
	if _, ok := s.players[id]; !ok {
		return s.snapshot()
	}

	var other PlayerID
	for pID := range s.players {
		if pID != id {
			other = pID
		}
	}

	s.p1, s.p2 = id, other
	s.slotsAssigned = true
	s.matchID = uuid.New()
	s.quit[s.p1], s.quit[s.p2] = false, false
	s.win[s.p1], s.win[s.p2] = false, false
	s.resetBlocks()

	return s.snapshot()
}

// InitBlocks unions the caller's initial block set into the shared set. It is ignored
// once steady-state intersection has begun.
func (s *Session) InitBlocks(id PlayerID, blocks []Block) Snapshot {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.players[id]; !ok || s.phase == blocksIntersecting {
		return s.snapshot()
	}

	s.blocks.Union(blocks)
	s.phase = blocksLoading

	return s.snapshot()
}

// UpdateRace applies a steady-state race tick: position overwrite, block intersection and
// the terminal flags. The result is non-nil only on the caller's first reported win.
func (s *Session) UpdateRace(id PlayerID, u RaceUpdate) (Snapshot, *RaceResult) {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.players[id]; !ok {
		return s.snapshot(), nil
	}

	s.playersRace[id] = u.Player
	reported := NewBlockSet(u.Blocks)
	if s.phase == blocksUnseeded {
		s.blocks = reported
	} else {
		s.blocks.Intersect(reported)
	}
	s.phase = blocksIntersecting

	s.quit[id] = u.Quit
	wonBefore := s.win[id]
	s.win[id] = u.Win

	var result *RaceResult
	if u.Win && !wonBefore {
		result = &RaceResult{
			MatchID: s.matchID,
			Winner:  s.players[id],
			Loser:   s.players[s.opponent(id)],
		}
	}

	return s.snapshot(), result
}

// UpdateEndless overwrites the caller's endless status. The result is non-nil only the
// first time the caller reports a loss.
func (s *Session) UpdateEndless(id PlayerID, u EndlessUpdate) (Snapshot, *EndlessResult) {
	s.Lock()
	defer s.Unlock()

	name, ok := s.players[id]
	if !ok {
		return s.snapshot(), nil
	}

	lostBefore := s.playersEndless[id].Lost
	s.playersEndless[id] = EndlessStatus{
		Y:     u.Y,
		Score: u.Score,
		Name:  name,
		Lost:  u.Lose,
	}

	var result *EndlessResult
	if u.Lose && !lostBefore {
		result = &EndlessResult{Name: name, Score: u.Score}
	}

	return s.snapshot(), result
}

// Remove purges id from every per-player map in one step. Removing an unknown id is a no-op.
func (s *Session) Remove(id PlayerID) Snapshot {
	s.Lock()
	defer s.Unlock()

	delete(s.players, id)
	delete(s.ready, id)
	delete(s.started, id)
	delete(s.playersRace, id)
	delete(s.playersEndless, id)
	delete(s.quit, id)
	delete(s.win, id)

	if s.slotsAssigned && (id == s.p1 || id == s.p2) {
		s.p1, s.p2 = 0, 0
		s.slotsAssigned = false
		s.matchID = uuid.Nil
		s.resetBlocks()
	}
	if len(s.players) == 0 {
		s.mode = ModeEndless
		s.resetBlocks()
	}
	s.refreshLobby()

	return s.snapshot()
}

// Has reports whether id is on the roster.
func (s *Session) Has(id PlayerID) bool {
	s.RLock()
	defer s.RUnlock()
	_, ok := s.players[id]
	return ok
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.RLock()
	defer s.RUnlock()
	return s.snapshot()
}

func (s *Session) refreshLobby() {
	s.full = len(s.players) == maxPlayers

	readyCount := 0
	for pID := range s.players {
		if s.ready[pID] {
			readyCount++
		}
	}
	s.start = readyCount == maxPlayers
}

func (s *Session) resetBlocks() {
	s.blocks = make(BlockSet)
	s.phase = blocksUnseeded
}

func (s *Session) opponent(id PlayerID) PlayerID {
	for pID := range s.players {
		if pID != id {
			return pID
		}
	}
	return 0
}

// snapshot must be called with the lock held.
func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Full:           s.full,
		Mode:           s.mode,
		Players:        maps.Clone(s.players),
		PlayersRace:    maps.Clone(s.playersRace),
		PlayersEndless: maps.Clone(s.playersEndless),
		Blocks:         s.blocks.Sorted(),
		Ready:          maps.Clone(s.ready),
		Start:          s.start,
		Started:        maps.Clone(s.started),
		Quit:           maps.Clone(s.quit),
		Win:            maps.Clone(s.win),
		Match:          s.matchID,
	}
	if s.slotsAssigned {
		p1, p2 := s.p1, s.p2
		snap.P1, snap.P2 = &p1, &p2
	}
	return snap
}
