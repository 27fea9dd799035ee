// Package gameapi exposes the session over HTTP: status endpoints and a WebSocket transport.
package gameapi

import "github.com/beka-birhanu/duo-platformer/service/i"

// LeaderboardResponse lists the best endless runs, best first.
type LeaderboardResponse struct {
	Entries []i.ScoredMember `json:"entries"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
