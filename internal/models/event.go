package models

// EntityType identifies which record type a change event refers to
type EntityType string

const (
	// EntityGame indicates the event carries a Game record
	EntityGame EntityType = "game"

	// EntityPlayer indicates the event carries a Player record
	EntityPlayer EntityType = "player"

	// EntityAction indicates the event carries an Action record
	EntityAction EntityType = "action"
)

// EventKind identifies what happened to the record
type EventKind string

const (
	// EventInsert indicates a new record was created
	EventInsert EventKind = "insert"

	// EventUpdate indicates an existing record changed
	EventUpdate EventKind = "update"

	// EventDelete indicates a record was removed
	EventDelete EventKind = "delete"
)

// ChangeEvent is a single change notification on a game's feed.
// Inserts and updates carry the full new record, not a diff;
// deletes carry only the record ID.
type ChangeEvent struct {
	// GameID scopes the event to a single game
	GameID string `json:"game_id"`

	// Entity identifies which record type changed
	Entity EntityType `json:"entity"`

	// Kind identifies what happened to the record
	Kind EventKind `json:"kind"`

	// Game is the full record for game insert/update events
	Game *Game `json:"game,omitempty"`

	// Player is the full record for player insert/update events
	Player *Player `json:"player,omitempty"`

	// Action is the full record for action insert events
	Action *Action `json:"action,omitempty"`

	// DeletedID is the removed record's ID for delete events
	DeletedID string `json:"deleted_id,omitempty"`
}
