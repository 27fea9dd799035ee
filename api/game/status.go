package gameapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/beka-birhanu/duo-platformer/game"
	logger "github.com/beka-birhanu/duo-platformer/infrastruture/log"
	"github.com/beka-birhanu/duo-platformer/service/i"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	defaultMaxMessageSize = 1024 * 6
	leaderboardTimeout    = 500 * time.Millisecond
)

var (
	ErrMissingSession = errors.New("session is required")
	ErrMissingEncoder = errors.New("encoder is required")
)

// StatusController serves the session state, the leaderboard and the WebSocket transport.
type StatusController struct {
	session        *game.Session
	encoder        game.Encoder
	board          i.ScoreBoard
	onConnection   i.ConnectionHandler
	maxMessageSize int
	upgrader       websocket.Upgrader
	logger         i.Logger
}

// StatusConfig holds the dependencies of a StatusController. Session and Encoder are required.
type StatusConfig struct {
	Session        *game.Session
	Encoder        game.Encoder
	Board          i.ScoreBoard        // Leaderboard endpoint answers 503 when nil.
	OnConnection   i.ConnectionHandler // WebSocket endpoint is not registered when nil.
	MaxMessageSize int
	Logger         i.Logger
}

// NewStatusController initializes a StatusController.
func NewStatusController(c StatusConfig) (*StatusController, error) {
	if c.Session == nil {
		return nil, ErrMissingSession
	}
	if c.Encoder == nil {
		return nil, ErrMissingEncoder
	}

	sc := &StatusController{
		session:        c.Session,
		encoder:        c.Encoder,
		board:          c.Board,
		onConnection:   c.OnConnection,
		maxMessageSize: c.MaxMessageSize,
		logger:         c.Logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	if sc.maxMessageSize <= 0 {
		sc.maxMessageSize = defaultMaxMessageSize
	}
	if sc.logger == nil {
		sc.logger = logger.Discard()
	}
	return sc, nil
}

// Register registers the routes.
func (sc *StatusController) Register(route *gin.RouterGroup) {
	route.GET("/session", sc.sessionState)
	route.GET("/leaderboard", sc.leaderboard)
	if sc.onConnection != nil {
		route.GET("/ws", sc.serveWS)
	}
}

// sessionState answers with the same document a player receives after a request.
func (sc *StatusController) sessionState(ctx *gin.Context) {
	payload, err := sc.encoder.MarshalSnapshot(sc.session.Snapshot())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "error while encoding session"})
		return
	}
	ctx.Data(http.StatusOK, "application/json", payload)
}

func (sc *StatusController) leaderboard(ctx *gin.Context) {
	if sc.board == nil {
		ctx.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "leaderboard disabled"})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, leaderboardTimeout)
	defer cancel()
	entries, err := sc.board.Top(timeoutCtx)
	if err != nil {
		sc.logger.Error(fmt.Sprintf("reading leaderboard: %s", err))
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "error while reading leaderboard"})
		return
	}
	if entries == nil {
		entries = []i.ScoredMember{}
	}

	ctx.JSON(http.StatusOK, LeaderboardResponse{Entries: entries})
}

// serveWS upgrades the request and hands the connection to the session handler. It
// returns once the player leaves.
func (sc *StatusController) serveWS(ctx *gin.Context) {
	conn, err := sc.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		sc.logger.Warning(fmt.Sprintf("websocket upgrade from %s: %s", ctx.Request.RemoteAddr, err))
		return
	}

	c := newWSConn(conn, sc.maxMessageSize)
	defer func() {
		_ = c.Close()
	}()
	sc.onConnection(c)
}
