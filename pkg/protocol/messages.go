package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType is the wire discriminant for outbound frames.
type MessageType string

const (
	MsgGameAction        MessageType = "game_action"
	MsgEndTurn           MessageType = "end_turn"
	MsgChat              MessageType = "chat"
	MsgDiplomacyRequest  MessageType = "diplomacy_request"
	MsgDiplomacyResponse MessageType = "diplomacy_response"
)

// Message is the closed set of frames this client can send.
type Message interface{ isMessage() }

type GameAction struct {
	PlayerID   string          `json:"player_id"`
	ActionType string          `json:"action_type"`
	Data       json.RawMessage `json:"data,omitempty"`
	Year       int             `json:"year"`
}

type EndTurn struct {
	PlayerID string `json:"player_id"`
	Year     int    `json:"year"`
}

type Chat struct {
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	Content     string `json:"content"`
	IsPrivate   bool   `json:"is_private"`
	RecipientID string `json:"recipient_id,omitempty"`
}

type DiplomacyRequest struct {
	RequestID   string          `json:"request_id"`
	FromPlayer  string          `json:"from_player"`
	ToPlayer    string          `json:"to_player"`
	RequestType string          `json:"request_type"`
	Data        json.RawMessage `json:"data,omitempty"`
}

type DiplomacyResponse struct {
	RequestID string `json:"request_id"`
	PlayerID  string `json:"player_id"`
	Accepted  bool   `json:"accepted"`
}

func (GameAction) isMessage()        {}
func (EndTurn) isMessage()           {}
func (Chat) isMessage()              {}
func (DiplomacyRequest) isMessage()  {}
func (DiplomacyResponse) isMessage() {}

// Encode serializes an outbound message as a flat tagged frame.
func Encode(m Message) ([]byte, error) {
	switch v := m.(type) {
	case GameAction:
		return json.Marshal(struct {
			Type MessageType `json:"type"`
			GameAction
		}{MsgGameAction, v})
	case EndTurn:
		return json.Marshal(struct {
			Type MessageType `json:"type"`
			EndTurn
		}{MsgEndTurn, v})
	case Chat:
		return json.Marshal(struct {
			Type MessageType `json:"type"`
			Chat
		}{MsgChat, v})
	case DiplomacyRequest:
		return json.Marshal(struct {
			Type MessageType `json:"type"`
			DiplomacyRequest
		}{MsgDiplomacyRequest, v})
	case DiplomacyResponse:
		return json.Marshal(struct {
			Type MessageType `json:"type"`
			DiplomacyResponse
		}{MsgDiplomacyResponse, v})
	default:
		return nil, fmt.Errorf("encode: unsupported message %T", m)
	}
}
