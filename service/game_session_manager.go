package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/duo-platformer/game"
	logger "github.com/beka-birhanu/duo-platformer/infrastruture/log"
	"github.com/beka-birhanu/duo-platformer/service/i"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultRecordTimeout = 5 * time.Second
	tracerName           = "github.com/beka-birhanu/duo-platformer/service"
)

var (
	ErrMissingSession = errors.New("session is required")
	ErrMissingEncoder = errors.New("encoder is required")
	ErrConnectionLost = errors.New("connection lost")
)

// phase is the per-connection dispatcher state. A connection moves from the lobby to the
// match once it was sent a snapshot with start set, and never moves back.
type phase int

const (
	phaseLobby phase = iota
	phaseMatch
)

func (p phase) String() string {
	if p == phaseMatch {
		return "match"
	}
	return "lobby"
}

func (p phase) accepts(msgType string) bool {
	if p == phaseLobby {
		return msgType == game.TypeMenu
	}
	return msgType == game.TypeRace || msgType == game.TypeEndless
}

// GameSessionManager serves player connections against the shared session.
type GameSessionManager struct {
	session       *game.Session
	encoder       game.Encoder
	ids           *game.IDSequence
	logger        i.Logger
	metrics       i.Metrics
	scores        i.ScoreRecorder
	results       i.MatchResultRepo
	recordTimeout time.Duration
	tracer        trace.Tracer
}

// Config holds the dependencies of a GameSessionManager. Session and Encoder are required.
type Config struct {
	Session       *game.Session
	Encoder       game.Encoder
	IDs           *game.IDSequence  // Defaults to a sequence seeded from the clock.
	Logger        i.Logger          // Defaults to discarding.
	Metrics       i.Metrics         // Optional.
	Scores        i.ScoreRecorder   // Optional, receives finished endless runs.
	Results       i.MatchResultRepo // Optional, receives race wins.
	RecordTimeout time.Duration     // Deadline for Scores and Results calls.

	TracerProvider trace.TracerProvider // Defaults to the global provider.
}

func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if c.Session == nil {
		return nil, ErrMissingSession
	}
	if c.Encoder == nil {
		return nil, ErrMissingEncoder
	}

	gsm := &GameSessionManager{
		session:       c.Session,
		encoder:       c.Encoder,
		ids:           c.IDs,
		logger:        c.Logger,
		metrics:       c.Metrics,
		scores:        c.Scores,
		results:       c.Results,
		recordTimeout: c.RecordTimeout,
	}
	tp := c.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	gsm.tracer = tp.Tracer(tracerName)

	if gsm.ids == nil {
		gsm.ids = game.NewIDSequenceFromClock()
	}
	if gsm.logger == nil {
		gsm.logger = logger.Discard()
	}
	if gsm.recordTimeout <= 0 {
		gsm.recordTimeout = defaultRecordTimeout
	}
	return gsm, nil
}

// HandleConnection assigns a player id, sends it as the first message and then serves
// requests until the connection is lost. It implements i.ConnectionHandler.
func (g *GameSessionManager) HandleConnection(c i.Conn) {
	id := g.ids.Next()
	payload, err := g.encoder.MarshalPlayerID(id)
	if err != nil {
		g.logger.Error(fmt.Sprintf("encoding id for %s: %s", c.RemoteAddr(), err))
		return
	}
	if err := c.Send(payload); err != nil {
		g.logger.Warning(fmt.Sprintf("sending id to %s: %s", c.RemoteAddr(), err))
		return
	}

	if g.metrics != nil {
		g.metrics.ConnectionOpened()
		defer g.metrics.ConnectionClosed()
	}

	g.logger.Info(fmt.Sprintf("starting worker for player %d on %s", id, c.RemoteAddr()))
	err = g.serve(context.Background(), id, c)
	g.session.Remove(id)
	g.logger.Info(fmt.Sprintf("player %d left: %s", id, err))
}

// serve runs the request/reply loop. It only returns on a lost connection, with an error
// wrapping ErrConnectionLost.
func (g *GameSessionManager) serve(ctx context.Context, id game.PlayerID, c i.Conn) error {
	err := g.loop(ctx, id, c)
	return fmt.Errorf("%w: %s", ErrConnectionLost, err)
}

func (g *GameSessionManager) loop(ctx context.Context, id game.PlayerID, c i.Conn) error {
	p := phaseLobby
	for {
		payload, err := c.Receive()
		if err != nil {
			if errors.Is(err, game.ErrProtocol) {
				if err := g.replyError(c, id, err); err != nil {
					return err
				}
				continue
			}
			return err
		}

		req, err := g.encoder.UnmarshalRequest(payload)
		if err != nil {
			if err := g.replyError(c, id, err); err != nil {
				return err
			}
			continue
		}

		if !p.accepts(req.Type()) {
			err := fmt.Errorf("%w: %s message during %s", game.ErrProtocol, req.Type(), p)
			if err := g.replyError(c, id, err); err != nil {
				return err
			}
			continue
		}

		snap := g.apply(ctx, id, req)
		if p == phaseLobby && snap.Start {
			if _, ok := snap.Players[id]; ok {
				p = phaseMatch
				g.logger.Info(fmt.Sprintf("player %d entered the %s match", id, snap.Mode))
			}
		}

		reply, err := g.encoder.MarshalSnapshot(snap)
		if err != nil {
			g.logger.Error(fmt.Sprintf("encoding snapshot for player %d: %s", id, err))
			continue
		}
		if err := c.Send(reply); err != nil {
			return err
		}
	}
}

// apply runs the state transition for req and returns the snapshot taken with it.
func (g *GameSessionManager) apply(ctx context.Context, id game.PlayerID, req game.Request) game.Snapshot {
	_, span := g.tracer.Start(ctx, "session."+req.Type(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.Int64("player.id", int64(id))),
	)
	defer span.End()

	if g.metrics != nil {
		g.metrics.RequestHandled(req.Type())
	}

	switch r := req.(type) {
	case game.MenuUpdate:
		snap, err := g.session.UpdateMenu(id, r)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			g.logger.Warning(fmt.Sprintf("player %d not admitted: %s", id, err))
		}
		return snap

	case game.RaceUpdate:
		var snap game.Snapshot
		if r.Setup {
			snap = g.session.SetupRace(id)
			if snap.P1 != nil {
				span.SetAttributes(attribute.String("match.id", snap.Match.String()))
			}
		}
		if r.InitBlocks {
			snap = g.session.InitBlocks(id, r.Blocks)
		}
		if r.Steady() {
			var result *game.RaceResult
			snap, result = g.session.UpdateRace(id, r)
			if result != nil {
				g.logger.Info(fmt.Sprintf("%s won match %s against %s", result.Winner, result.MatchID, result.Loser))
				go g.recordRace(*result)
			}
		}
		return snap

	case game.EndlessUpdate:
		snap, result := g.session.UpdateEndless(id, r)
		if result != nil {
			g.logger.Info(fmt.Sprintf("%s lost an endless run with %d points", result.Name, result.Score))
			go g.recordScore(*result)
		}
		return snap

	default:
		return g.session.Snapshot()
	}
}

func (g *GameSessionManager) replyError(c i.Conn, id game.PlayerID, cause error) error {
	if g.metrics != nil {
		g.metrics.ProtocolError()
	}
	g.logger.Warning(fmt.Sprintf("player %d: %s", id, cause))

	payload, err := g.encoder.MarshalError(cause)
	if err != nil {
		g.logger.Error(fmt.Sprintf("encoding error reply for player %d: %s", id, err))
		return nil
	}
	return c.Send(payload)
}

func (g *GameSessionManager) recordRace(result game.RaceResult) {
	if g.results == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), g.recordTimeout)
	defer cancel()

	if err := g.results.Save(ctx, result); err != nil {
		g.logger.Error(fmt.Sprintf("saving result of match %s: %s", result.MatchID, err))
	}
}

func (g *GameSessionManager) recordScore(result game.EndlessResult) {
	if g.scores == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), g.recordTimeout)
	defer cancel()

	if err := g.scores.Record(ctx, result); err != nil {
		g.logger.Error(fmt.Sprintf("recording score of %s: %s", result.Name, err))
	}
}
