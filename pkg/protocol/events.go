package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is the wire discriminant carried in every inbound frame.
type EventType string

const (
	EvtPlayerJoined      EventType = "player_joined"
	EvtPlayerLeft        EventType = "player_left"
	EvtPlayerReady       EventType = "player_ready"
	EvtCountrySelected   EventType = "country_selected"
	EvtGameStarted       EventType = "game_started"
	EvtChatMessage       EventType = "chat_message"
	EvtGameAction        EventType = "game_action"
	EvtTurnEnded         EventType = "turn_ended"
	EvtAllTurnsComplete  EventType = "all_turns_complete"
	EvtWorldStateUpdate  EventType = "world_state_update"
	EvtGameOver          EventType = "game_over"
	EvtDiplomacyRequest  EventType = "diplomacy_request"
	EvtDiplomacyResponse EventType = "diplomacy_response"
	EvtHostChanged       EventType = "host_changed"
	EvtError             EventType = "error"
)

// Event is the closed set of decoded inbound frames. Unrecognized tags decode
// to Unknown rather than an error, so new server messages never kill a client.
type Event interface{ isEvent() }

type PlayerJoined struct {
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	JoinedAt   time.Time `json:"joined_at"`
}

type PlayerLeft struct {
	PlayerID string `json:"player_id"`
}

type PlayerReady struct {
	PlayerID string `json:"player_id"`
	Ready    bool   `json:"ready"`
}

type CountrySelected struct {
	PlayerID  string `json:"player_id"`
	CountryID string `json:"country_id"`
}

type GameStarted struct {
	StartYear int `json:"start_year"`
}

type ChatMessage struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	Content     string    `json:"content"`
	IsPrivate   bool      `json:"is_private"`
	RecipientID string    `json:"recipient_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type GameActionEvent struct {
	PlayerID   string          `json:"player_id"`
	ActionType string          `json:"action_type"`
	Data       json.RawMessage `json:"data,omitempty"`
	Year       int             `json:"year"`
}

type TurnEnded struct {
	PlayerID string `json:"player_id"`
	Year     int    `json:"year"`
}

type AllTurnsComplete struct {
	Year int `json:"year"`
}

type WorldStateUpdate struct {
	Year int             `json:"year"`
	Data json.RawMessage `json:"data,omitempty"`
}

type GameOver struct {
	Reason string `json:"reason,omitempty"`
}

type DiplomacyRequestEvent struct {
	RequestID   string          `json:"request_id"`
	FromPlayer  string          `json:"from_player"`
	ToPlayer    string          `json:"to_player"`
	RequestType string          `json:"request_type"`
	Data        json.RawMessage `json:"data,omitempty"`
}

type DiplomacyResponseEvent struct {
	RequestID string `json:"request_id"`
	PlayerID  string `json:"player_id"`
	Accepted  bool   `json:"accepted"`
}

type HostChanged struct {
	HostID string `json:"host_id"`
}

type ServerError struct {
	Message string `json:"message"`
}

// Unknown carries a frame whose tag this client does not recognize.
type Unknown struct {
	Type EventType
	Raw  json.RawMessage
}

func (PlayerJoined) isEvent()           {}
func (PlayerLeft) isEvent()             {}
func (PlayerReady) isEvent()            {}
func (CountrySelected) isEvent()        {}
func (GameStarted) isEvent()            {}
func (ChatMessage) isEvent()            {}
func (GameActionEvent) isEvent()        {}
func (TurnEnded) isEvent()              {}
func (AllTurnsComplete) isEvent()       {}
func (WorldStateUpdate) isEvent()       {}
func (GameOver) isEvent()               {}
func (DiplomacyRequestEvent) isEvent()  {}
func (DiplomacyResponseEvent) isEvent() {}
func (HostChanged) isEvent()            {}
func (ServerError) isEvent()            {}
func (Unknown) isEvent()                {}

// Decode parses one inbound frame. A frame without a readable "type" field is
// a protocol error; a frame with an unrecognized type decodes to Unknown.
func Decode(data []byte) (Event, error) {
	var head struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch head.Type {
	case EvtPlayerJoined:
		return decodeAs[PlayerJoined](head.Type, data)
	case EvtPlayerLeft:
		return decodeAs[PlayerLeft](head.Type, data)
	case EvtPlayerReady:
		return decodeAs[PlayerReady](head.Type, data)
	case EvtCountrySelected:
		return decodeAs[CountrySelected](head.Type, data)
	case EvtGameStarted:
		return decodeAs[GameStarted](head.Type, data)
	case EvtChatMessage:
		return decodeAs[ChatMessage](head.Type, data)
	case EvtGameAction:
		return decodeAs[GameActionEvent](head.Type, data)
	case EvtTurnEnded:
		return decodeAs[TurnEnded](head.Type, data)
	case EvtAllTurnsComplete:
		return decodeAs[AllTurnsComplete](head.Type, data)
	case EvtWorldStateUpdate:
		return decodeAs[WorldStateUpdate](head.Type, data)
	case EvtGameOver:
		return decodeAs[GameOver](head.Type, data)
	case EvtDiplomacyRequest:
		return decodeAs[DiplomacyRequestEvent](head.Type, data)
	case EvtDiplomacyResponse:
		return decodeAs[DiplomacyResponseEvent](head.Type, data)
	case EvtHostChanged:
		return decodeAs[HostChanged](head.Type, data)
	case EvtError:
		return decodeAs[ServerError](head.Type, data)
	default:
		return Unknown{Type: head.Type, Raw: append(json.RawMessage(nil), data...)}, nil
	}
}

func decodeAs[T Event](tag EventType, data []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag, err)
	}
	return ev, nil
}
