// Package jsonenc implements game.Encoder with one JSON document per message.
package jsonenc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/beka-birhanu/duo-platformer/game"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const protocolErrorCode = "protocol_error"

var _ game.Encoder = &JSON{}

// JSON is the wire codec shared by the TCP and WebSocket transports.
type JSON struct {
	validate *validator.Validate
}

// New returns a JSON codec.
func New() *JSON {
	return &JSON{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// UnmarshalRequest implements game.Encoder.
func (j *JSON) UnmarshalRequest(b []byte) (game.Request, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %s", game.ErrProtocol, err)
	}
	if err := j.validate.Struct(env); err != nil {
		return nil, fmt.Errorf("%w: unknown message type %q", game.ErrProtocol, env.Type)
	}

	switch env.Type {
	case game.TypeMenu:
		return j.unmarshalMenu(b)
	case game.TypeRace:
		return j.unmarshalRace(b)
	default:
		return j.unmarshalEndless(b)
	}
}

func (j *JSON) unmarshalMenu(b []byte) (game.Request, error) {
	var m menuMessage
	if err := j.decode(b, &m); err != nil {
		return nil, err
	}
	return game.MenuUpdate{
		Name:       *m.Name,
		Ready:      *m.Ready,
		Started:    m.Started,
		ChangeMode: m.ChangeMode,
		Mode:       game.Mode(m.Mode),
	}, nil
}

func (j *JSON) unmarshalRace(b []byte) (game.Request, error) {
	var m raceMessage
	if err := j.decode(b, &m); err != nil {
		return nil, err
	}

	u := game.RaceUpdate{
		Setup:      m.Setup,
		InitBlocks: m.InitBlocks,
		Quit:       m.Quit,
		Win:        m.Win,
	}
	if (m.InitBlocks || u.Steady()) && m.Blocks == nil {
		return nil, fmt.Errorf("%w: %s message is missing blocks", game.ErrProtocol, game.TypeRace)
	}
	if u.Steady() && m.Player == nil {
		return nil, fmt.Errorf("%w: %s message is missing player", game.ErrProtocol, game.TypeRace)
	}

	u.Blocks = make([]game.Block, 0, len(m.Blocks))
	for _, xy := range m.Blocks {
		u.Blocks = append(u.Blocks, game.Block{X: xy[0], Y: xy[1]})
	}
	if m.Player != nil {
		u.Player = game.Position{X: *m.Player.X, Y: *m.Player.Y}
	}
	return u, nil
}

func (j *JSON) unmarshalEndless(b []byte) (game.Request, error) {
	var m endlessMessage
	if err := j.decode(b, &m); err != nil {
		return nil, err
	}
	return game.EndlessUpdate{Y: *m.Y, Score: *m.Score, Lose: m.Lose}, nil
}

// decode unmarshals b into v and validates its tags.
func (j *JSON) decode(b []byte, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %s", game.ErrProtocol, err)
	}
	if err := j.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field %s failed %q", game.ErrProtocol, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %s", game.ErrProtocol, err)
	}
	return nil
}

// MarshalSnapshot implements game.Encoder.
func (j *JSON) MarshalSnapshot(s game.Snapshot) ([]byte, error) {
	msg := snapshotMessage{
		Full:           s.Full,
		Mode:           bool(s.Mode),
		Players:        s.Players,
		PlayersRace:    make(map[game.PlayerID]playerPosition, len(s.PlayersRace)),
		PlayersEndless: make(map[game.PlayerID]endlessStatus, len(s.PlayersEndless)),
		Blocks:         make([][2]int, 0, len(s.Blocks)),
		Ready:          s.Ready,
		Start:          s.Start,
		Started:        s.Started,
		P1:             s.P1,
		P2:             s.P2,
		Quit:           s.Quit,
		Win:            s.Win,
	}
	for id, p := range s.PlayersRace {
		msg.PlayersRace[id] = playerPosition{X: p.X, Y: p.Y}
	}
	for id, e := range s.PlayersEndless {
		msg.PlayersEndless[id] = endlessStatus{Y: e.Y, Score: e.Score, Name: e.Name, Lost: e.Lost}
	}
	for _, b := range s.Blocks {
		msg.Blocks = append(msg.Blocks, [2]int{b.X, b.Y})
	}
	if s.Match != uuid.Nil {
		m := s.Match.String()
		msg.Match = &m
	}
	return json.Marshal(msg)
}

// MarshalPlayerID implements game.Encoder.
func (j *JSON) MarshalPlayerID(id game.PlayerID) ([]byte, error) {
	return json.Marshal(id)
}

// MarshalError implements game.Encoder.
func (j *JSON) MarshalError(err error) ([]byte, error) {
	if err == nil {
		return nil, errors.New("trying to encode nil error")
	}
	return json.Marshal(errorMessage{Error: err.Error(), Code: protocolErrorCode})
}

// MarshalRequest encodes a request the way a client sends it.
func (j *JSON) MarshalRequest(r game.Request) ([]byte, error) {
	switch req := r.(type) {
	case game.MenuUpdate:
		return json.Marshal(menuMessage{
			Type:       game.TypeMenu,
			Name:       &req.Name,
			Ready:      &req.Ready,
			Started:    req.Started,
			ChangeMode: req.ChangeMode,
			Mode:       bool(req.Mode),
		})
	case game.RaceUpdate:
		msg := raceMessage{
			Type:       game.TypeRace,
			Setup:      req.Setup,
			InitBlocks: req.InitBlocks,
			Blocks:     make([][]int, 0, len(req.Blocks)),
			Player:     &positionMessage{X: &req.Player.X, Y: &req.Player.Y},
			Quit:       req.Quit,
			Win:        req.Win,
		}
		for _, b := range req.Blocks {
			msg.Blocks = append(msg.Blocks, []int{b.X, b.Y})
		}
		return json.Marshal(msg)
	case game.EndlessUpdate:
		return json.Marshal(endlessMessage{
			Type:  game.TypeEndless,
			Y:     &req.Y,
			Score: &req.Score,
			Lose:  req.Lose,
		})
	default:
		return nil, fmt.Errorf("%w: cannot encode %T", game.ErrProtocol, r)
	}
}

// UnmarshalSnapshot decodes a reply the way a client reads it.
func (j *JSON) UnmarshalSnapshot(b []byte) (game.Snapshot, error) {
	var msg snapshotMessage
	if err := json.Unmarshal(b, &msg); err != nil {
		return game.Snapshot{}, err
	}

	s := game.Snapshot{
		Full:           msg.Full,
		Mode:           game.Mode(msg.Mode),
		Players:        msg.Players,
		PlayersRace:    make(map[game.PlayerID]game.Position, len(msg.PlayersRace)),
		PlayersEndless: make(map[game.PlayerID]game.EndlessStatus, len(msg.PlayersEndless)),
		Blocks:         make([]game.Block, 0, len(msg.Blocks)),
		Ready:          msg.Ready,
		Start:          msg.Start,
		Started:        msg.Started,
		P1:             msg.P1,
		P2:             msg.P2,
		Quit:           msg.Quit,
		Win:            msg.Win,
	}
	for id, p := range msg.PlayersRace {
		s.PlayersRace[id] = game.Position{X: p.X, Y: p.Y}
	}
	for id, e := range msg.PlayersEndless {
		s.PlayersEndless[id] = game.EndlessStatus{Y: e.Y, Score: e.Score, Name: e.Name, Lost: e.Lost}
	}
	for _, xy := range msg.Blocks {
		s.Blocks = append(s.Blocks, game.Block{X: xy[0], Y: xy[1]})
	}
	if msg.Match != nil {
		id, err := uuid.Parse(*msg.Match)
		if err != nil {
			return game.Snapshot{}, err
		}
		s.Match = id
	}
	return s, nil
}
