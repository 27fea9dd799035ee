package game

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	idA PlayerID = 1700000000
	idB PlayerID = 1700000001
	idC PlayerID = 1700000002
)

func fullRoom(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	_, err := s.UpdateMenu(idA, MenuUpdate{Name: "A"})
	require.NoError(t, err)
	_, err = s.UpdateMenu(idB, MenuUpdate{Name: "B"})
	require.NoError(t, err)
	return s
}

func TestSessionLobby(t *testing.T) {
	t.Run("two players make the room full", func(t *testing.T) {
		s := NewSession()

		snap, err := s.UpdateMenu(idA, MenuUpdate{Name: "A"})
		require.NoError(t, err)
		assert.False(t, snap.Full)
		assert.Equal(t, map[PlayerID]string{idA: "A"}, snap.Players)

		snap, err = s.UpdateMenu(idB, MenuUpdate{Name: "B"})
		require.NoError(t, err)
		assert.True(t, snap.Full)
		assert.Len(t, snap.Players, 2)
	})

	t.Run("repeated messages from one id do not fill the room", func(t *testing.T) {
		s := NewSession()
		for i := 0; i < 5; i++ {
			snap, err := s.UpdateMenu(idA, MenuUpdate{Name: "A"})
			require.NoError(t, err)
			assert.False(t, snap.Full)
		}
	})

	t.Run("third player is turned away", func(t *testing.T) {
		s := fullRoom(t)

		snap, err := s.UpdateMenu(idC, MenuUpdate{Name: "C", Ready: true})
		assert.ErrorIs(t, err, ErrRoomFull)
		assert.True(t, snap.Full)
		assert.NotContains(t, snap.Players, idC)
		assert.NotContains(t, snap.Ready, idC)
	})

	t.Run("start follows both ready flags", func(t *testing.T) {
		s := fullRoom(t)

		snap, _ := s.UpdateMenu(idA, MenuUpdate{Name: "A", Ready: true})
		assert.False(t, snap.Start)

		snap, _ = s.UpdateMenu(idB, MenuUpdate{Name: "B", Ready: true})
		assert.True(t, snap.Start)

		snap, _ = s.UpdateMenu(idA, MenuUpdate{Name: "A", Ready: false})
		assert.False(t, snap.Start)
	})

	t.Run("single ready player never starts", func(t *testing.T) {
		s := NewSession()
		snap, _ := s.UpdateMenu(idA, MenuUpdate{Name: "A", Ready: true})
		assert.False(t, snap.Start)
	})

	t.Run("mode changes only when requested", func(t *testing.T) {
		s := fullRoom(t)

		snap, _ := s.UpdateMenu(idA, MenuUpdate{Name: "A", ChangeMode: true, Mode: ModeRace})
		assert.Equal(t, ModeRace, snap.Mode)

		snap, _ = s.UpdateMenu(idB, MenuUpdate{Name: "B", Mode: ModeEndless})
		assert.Equal(t, ModeRace, snap.Mode)

		snap, _ = s.UpdateMenu(idB, MenuUpdate{Name: "B", ChangeMode: true, Mode: ModeEndless})
		assert.Equal(t, ModeEndless, snap.Mode)
	})
}

func TestSessionSetupRace(t *testing.T) {
	t.Run("caller becomes p1", func(t *testing.T) {
		s := fullRoom(t)

		snap := s.SetupRace(idB)
		require.NotNil(t, snap.P1)
		require.NotNil(t, snap.P2)
		assert.Equal(t, idB, *snap.P1)
		assert.Equal(t, idA, *snap.P2)
		assert.NotEqual(t, uuid.Nil, snap.Match)
		assert.Equal(t, map[PlayerID]bool{idA: false, idB: false}, snap.Quit)
		assert.Equal(t, map[PlayerID]bool{idA: false, idB: false}, snap.Win)
	})

	t.Run("is idempotent", func(t *testing.T) {
		s := fullRoom(t)

		first := s.SetupRace(idA)
		second := s.SetupRace(idB)
		third := s.SetupRace(idA)

		assert.Equal(t, *first.P1, *second.P1)
		assert.Equal(t, *first.P2, *second.P2)
		assert.Equal(t, *first.P1, *third.P1)
		assert.Equal(t, first.Match, third.Match)
	})

	t.Run("needs a full room", func(t *testing.T) {
		s := NewSession()
		_, _ = s.UpdateMenu(idA, MenuUpdate{Name: "A"})

		snap := s.SetupRace(idA)
		assert.Nil(t, snap.P1)
		assert.Nil(t, snap.P2)
	})

	t.Run("ignores ids off the roster", func(t *testing.T) {
		s := fullRoom(t)

		snap := s.SetupRace(idC)
		assert.Nil(t, snap.P1)
	})
}

func TestSessionBlocks(t *testing.T) {
	t.Run("steady reports converge to the intersection", func(t *testing.T) {
		s := fullRoom(t)
		s.SetupRace(idA)

		s.UpdateRace(idA, RaceUpdate{Blocks: []Block{{0, 0}, {100, 0}}})
		snap, _ := s.UpdateRace(idB, RaceUpdate{Blocks: []Block{{100, 0}}})

		assert.Equal(t, []Block{{100, 0}}, snap.Blocks)
	})

	t.Run("initBlocks unions both reports", func(t *testing.T) {
		s := fullRoom(t)
		s.SetupRace(idA)

		s.InitBlocks(idA, []Block{{0, 0}, {1, 0}})
		snap := s.InitBlocks(idB, []Block{{1, 0}, {2, 0}})

		assert.Equal(t, []Block{{0, 0}, {1, 0}, {2, 0}}, snap.Blocks)
	})

	t.Run("intersection never grows back", func(t *testing.T) {
		s := fullRoom(t)
		s.SetupRace(idA)
		s.InitBlocks(idA, []Block{{0, 0}, {1, 0}, {2, 0}})

		s.UpdateRace(idA, RaceUpdate{Blocks: []Block{{1, 0}, {2, 0}}})
		s.UpdateRace(idB, RaceUpdate{Blocks: []Block{{0, 0}, {2, 0}}})
		snap, _ := s.UpdateRace(idA, RaceUpdate{Blocks: []Block{{0, 0}, {1, 0}, {2, 0}}})
		assert.Equal(t, []Block{{2, 0}}, snap.Blocks)

		snap = s.InitBlocks(idB, []Block{{0, 0}, {1, 0}})
		assert.Equal(t, []Block{{2, 0}}, snap.Blocks)
	})

	t.Run("report order does not matter", func(t *testing.T) {
		s1, s2 := fullRoom(t), fullRoom(t)
		s1.SetupRace(idA)
		s2.SetupRace(idA)
		r1 := []Block{{0, 0}, {5, 5}, {7, 1}}
		r2 := []Block{{5, 5}, {7, 1}, {9, 9}}

		s1.UpdateRace(idA, RaceUpdate{Blocks: r1})
		a, _ := s1.UpdateRace(idB, RaceUpdate{Blocks: r2})
		s2.UpdateRace(idB, RaceUpdate{Blocks: r2})
		b, _ := s2.UpdateRace(idA, RaceUpdate{Blocks: r1})

		assert.Equal(t, a.Blocks, b.Blocks)
		assert.Equal(t, []Block{{5, 5}, {7, 1}}, a.Blocks)
	})
}

func TestSessionUpdateRace(t *testing.T) {
	t.Run("records position and flags", func(t *testing.T) {
		s := fullRoom(t)
		s.SetupRace(idA)

		snap, result := s.UpdateRace(idA, RaceUpdate{Player: Position{X: 10, Y: 20}, Quit: true})
		assert.Nil(t, result)
		assert.Equal(t, Position{X: 10, Y: 20}, snap.PlayersRace[idA])
		assert.True(t, snap.Quit[idA])
		assert.False(t, snap.Win[idA])
	})

	t.Run("first win produces a result once", func(t *testing.T) {
		s := fullRoom(t)
		setup := s.SetupRace(idA)

		_, result := s.UpdateRace(idB, RaceUpdate{Win: true})
		require.NotNil(t, result)
		assert.Equal(t, "B", result.Winner)
		assert.Equal(t, "A", result.Loser)
		assert.Equal(t, setup.Match, result.MatchID)

		_, result = s.UpdateRace(idB, RaceUpdate{Win: true})
		assert.Nil(t, result)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		s := fullRoom(t)
		snap, result := s.UpdateRace(idC, RaceUpdate{Player: Position{X: 1}})
		assert.Nil(t, result)
		assert.NotContains(t, snap.PlayersRace, idC)
	})
}

func TestSessionUpdateEndless(t *testing.T) {
	s := fullRoom(t)

	snap, result := s.UpdateEndless(idA, EndlessUpdate{Y: -40, Score: 12})
	assert.Nil(t, result)
	assert.Equal(t, EndlessStatus{Y: -40, Score: 12, Name: "A"}, snap.PlayersEndless[idA])
	assert.NotContains(t, snap.PlayersEndless, idB)

	_, result = s.UpdateEndless(idA, EndlessUpdate{Y: -80, Score: 30, Lose: true})
	require.NotNil(t, result)
	assert.Equal(t, EndlessResult{Name: "A", Score: 30}, *result)

	_, result = s.UpdateEndless(idA, EndlessUpdate{Y: -80, Score: 30, Lose: true})
	assert.Nil(t, result)

	snap, result = s.UpdateEndless(idC, EndlessUpdate{Score: 99, Lose: true})
	assert.Nil(t, result)
	assert.NotContains(t, snap.PlayersEndless, idC)
}

func TestSessionRemove(t *testing.T) {
	t.Run("purges exactly one id", func(t *testing.T) {
		s := fullRoom(t)
		s.UpdateMenu(idA, MenuUpdate{Name: "A", Ready: true})
		s.UpdateMenu(idB, MenuUpdate{Name: "B", Ready: true, Started: true})
		s.UpdateEndless(idA, EndlessUpdate{Score: 1})
		s.UpdateEndless(idB, EndlessUpdate{Score: 2})
		s.SetupRace(idA)
		s.UpdateRace(idA, RaceUpdate{Player: Position{X: 1}})
		s.UpdateRace(idB, RaceUpdate{Player: Position{X: 2}})

		snap := s.Remove(idA)

		assert.False(t, snap.Full)
		assert.False(t, snap.Start)
		assert.Equal(t, map[PlayerID]string{idB: "B"}, snap.Players)
		assert.Equal(t, map[PlayerID]bool{idB: true}, snap.Ready)
		assert.Equal(t, map[PlayerID]bool{idB: true}, snap.Started)
		assert.Equal(t, map[PlayerID]Position{idB: {X: 2}}, snap.PlayersRace)
		assert.Equal(t, map[PlayerID]EndlessStatus{idB: {Score: 2, Name: "B"}}, snap.PlayersEndless)
		assert.Equal(t, map[PlayerID]bool{idB: false}, snap.Quit)
		assert.Equal(t, map[PlayerID]bool{idB: false}, snap.Win)
		assert.Nil(t, snap.P1)
		assert.Nil(t, snap.P2)
		assert.Equal(t, uuid.Nil, snap.Match)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		s := fullRoom(t)
		before := s.Snapshot()

		after := s.Remove(idC)
		assert.Equal(t, before, after)

		s.Remove(idA)
		assert.NotPanics(t, func() { s.Remove(idA) })
	})

	t.Run("freed slot can be taken by a new player", func(t *testing.T) {
		s := fullRoom(t)
		s.Remove(idA)

		snap, err := s.UpdateMenu(idC, MenuUpdate{Name: "C"})
		require.NoError(t, err)
		assert.True(t, snap.Full)
		assert.Equal(t, map[PlayerID]string{idB: "B", idC: "C"}, snap.Players)
	})

	t.Run("empty room resets mode", func(t *testing.T) {
		s := fullRoom(t)
		s.UpdateMenu(idA, MenuUpdate{Name: "A", ChangeMode: true, Mode: ModeRace})
		s.Remove(idA)
		snap := s.Remove(idB)
		assert.Equal(t, ModeEndless, snap.Mode)
		assert.Empty(t, snap.Players)
	})
}

func TestSessionConcurrentUpdates(t *testing.T) {
	s := fullRoom(t)
	s.SetupRace(idA)
	s.InitBlocks(idA, []Block{{0, 0}, {1, 1}, {2, 2}, {3, 3}})

	var wg sync.WaitGroup
	for _, tc := range []struct {
		id     PlayerID
		blocks []Block
	}{
		{idA, []Block{{0, 0}, {1, 1}, {2, 2}}},
		{idB, []Block{{1, 1}, {2, 2}, {3, 3}}},
	} {
		tc := tc
		wg.Add(1)
		go func() {
			defer wg.Done()
			for x := 0; x < 100; x++ {
				s.UpdateRace(tc.id, RaceUpdate{Player: Position{X: x}, Blocks: tc.blocks})
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, []Block{{1, 1}, {2, 2}}, snap.Blocks)
	assert.Equal(t, 99, snap.PlayersRace[idA].X)
	assert.Equal(t, 99, snap.PlayersRace[idB].X)
}
