package protocol

import (
	"github.com/cory-johannsen/warband/internal/game/character"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/world"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Version  string `json:"version"`
}

type LoginResponse struct {
	ID string `json:"id"`
}

type PlayerListResponse struct {
	List []character.Summary `json:"list"`
}

type PlayerCreateRequest struct {
	Name      string `json:"name"`
	Archetype string `json:"archetype"`
}

// PlayerNameRequest is the payload of player-delete and player-select.
type PlayerNameRequest struct {
	Name string `json:"name"`
}

type PlayerNameResponse struct {
	Name string `json:"name"`
}

// MapSummary describes one live map instance in map-list.
type MapSummary struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	CustomName      string `json:"customName"`
	Difficulty      string `json:"difficulty"`
	Population      int    `json:"population"`
	PopulationLimit int    `json:"populationLimit"`
	Locked          bool   `json:"locked"`
}

type MapListResponse struct {
	List []MapSummary `json:"list"`
}

type MapCreateRequest struct {
	MapType    string `json:"mapType"`
	CustomName string `json:"customName"`
	Password   string `json:"password,omitempty"`
	Difficulty string `json:"difficulty"`
}

type MapCreateResponse struct {
	MapID string `json:"mapId"`
}

type MapJoinRequest struct {
	MapID    string `json:"mapId"`
	Password string `json:"password,omitempty"`
}

// MapJoinResponse is the snapshot a member receives on joining.
type MapJoinResponse struct {
	MapID      string         `json:"mapId"`
	TileLayout world.Layout   `json:"tileLayout"`
	Units      []combat.View  `json:"units"`
	Objects    []world.Object `json:"objects"`
}

// PlayerUpdate is a client-reported position, animation or facing.
type PlayerUpdate = combat.Update

type ChatRequest struct {
	Chat string `json:"chat"`
}

type ChatMessage struct {
	Chat string `json:"chat"`
	From string `json:"from"`
}

type AbilityCastRequest struct {
	AbilityName string `json:"abilityName"`
	TargetID    string `json:"targetId"`
}

type AbilityCastResponse struct {
	AbilityName string `json:"abilityName"`
}

type EntDelete struct {
	ID string `json:"id"`
}

// EntUpdate carries the changed subset of a unit's public state.
type EntUpdate struct {
	ID string `json:"id"`
	combat.Update
	Abilities  map[string]bool `json:"abilities,omitempty"`
	Level      *int            `json:"level,omitempty"`
	XP         *int            `json:"xp,omitempty"`
	XPRequired *int            `json:"xpRequired,omitempty"`
	Merits     *int            `json:"merits,omitempty"`
}

// StatsUpdate carries one stat change; absent fields did not change.
type StatsUpdate struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Current  *float64 `json:"current,omitempty"`
	Capacity *float64 `json:"capacity,omitempty"`
}
