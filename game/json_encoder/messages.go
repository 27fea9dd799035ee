package jsonenc

import "github.com/beka-birhanu/duo-platformer/game"

// envelope carries only the discriminant; the body is decoded again into the typed message.
type envelope struct {
	Type string `json:"type" validate:"required,oneof=menu ingame-race ingame-endless"`
}

type menuMessage struct {
	Type       string  `json:"type"`
	Name       *string `json:"name" validate:"required,min=1,max=12"`
	Ready      *bool   `json:"ready" validate:"required"`
	Started    bool    `json:"started"`
	ChangeMode bool    `json:"changemode"`
	Mode       bool    `json:"mode"`
}

type positionMessage struct {
	X *int `json:"x" validate:"required"`
	Y *int `json:"y" validate:"required"`
}

type raceMessage struct {
	Type       string           `json:"type"`
	Setup      bool             `json:"setup"`
	InitBlocks bool             `json:"initBlocks"`
	Blocks     [][]int          `json:"blocks" validate:"dive,len=2"`
	Player     *positionMessage `json:"player"`
	Quit       bool             `json:"quit"`
	Win        bool             `json:"win"`
}

type endlessMessage struct {
	Type  string `json:"type"`
	Y     *int   `json:"player-y" validate:"required"`
	Score *int   `json:"player-score" validate:"required,min=0"`
	Lose  bool   `json:"lose"`
}

type playerPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type endlessStatus struct {
	Y     int    `json:"y"`
	Score int    `json:"score"`
	Name  string `json:"name"`
	Lost  bool   `json:"lost"`
}

type snapshotMessage struct {
	Full           bool                             `json:"full"`
	Mode           bool                             `json:"mode"`
	Players        map[game.PlayerID]string         `json:"players"`
	PlayersRace    map[game.PlayerID]playerPosition `json:"playersRace"`
	PlayersEndless map[game.PlayerID]endlessStatus  `json:"playersEndless"`
	Blocks         [][2]int                         `json:"blocks"`
	Ready          map[game.PlayerID]bool           `json:"ready"`
	Start          bool                             `json:"start"`
	Started        map[game.PlayerID]bool           `json:"started"`
	P1             *game.PlayerID                   `json:"p1"`
	P2             *game.PlayerID                   `json:"p2"`
	Quit           map[game.PlayerID]bool           `json:"quit"`
	Win            map[game.PlayerID]bool           `json:"win"`
	Match          *string                          `json:"match"`
}

type errorMessage struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
