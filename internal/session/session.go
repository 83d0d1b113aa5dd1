// Package session owns the client's live view of one multiplayer session:
// lobby roster, turn progress, chat, connection status, and the single
// current error. All mutation happens on one loop goroutine; REST responses
// and channel events both land here as inbox messages, so they never race.
package session

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/worldsim/client/internal/chat"
	"github.com/worldsim/client/internal/conn"
	"github.com/worldsim/client/internal/diplomacy"
	"github.com/worldsim/client/internal/gateway"
	"github.com/worldsim/client/internal/state"
	"github.com/worldsim/client/internal/turn"
	"github.com/worldsim/client/pkg/protocol"
)

var (
	ErrNoLobby       = errors.New("not in a lobby")
	ErrNotHost       = errors.New("only the host can start the game")
	ErrTurnSubmitted = errors.New("turn already submitted")
)

type msg interface{ isSessionMsg() }

type channelEvent struct{ Event protocol.Event }

type statusChange struct {
	Status conn.Status
	Err    error
}

type lobbyEntered struct{ Lobby state.LobbyInfo }

type lobbyLeft struct{}

type requestFailed struct{ Err error }

type markChatRead struct{}

type clearError struct{}

type endTurnReq struct{ Reply chan error }

type gameActionReq struct {
	ActionType string
	Data       json.RawMessage
	Reply      chan error
}

type getView struct{ Reply chan View }

func (channelEvent) isSessionMsg()  {}
func (statusChange) isSessionMsg()  {}
func (lobbyEntered) isSessionMsg()  {}
func (lobbyLeft) isSessionMsg()     {}
func (requestFailed) isSessionMsg() {}
func (markChatRead) isSessionMsg()  {}
func (clearError) isSessionMsg()    {}
func (endTurnReq) isSessionMsg()    {}
func (gameActionReq) isSessionMsg() {}
func (getView) isSessionMsg()       {}

// View is an immutable snapshot handed to the UI layer.
type View struct {
	PlayerID   string
	PlayerName string
	Connection conn.Status
	Lobby      *state.LobbyInfo
	Turn       turn.Coordinator
	Chat       []protocol.ChatMessage
	Unread     int
	LastError  string
}

type Session struct {
	playerID   string
	playerName string

	gw   *gateway.Client
	conn *conn.Manager
	dipl *diplomacy.Broker
	log  *zap.Logger

	inbox  chan msg
	world  chan protocol.Event
	ctx    context.Context
	cancel context.CancelFunc

	// Everything below is owned by the loop goroutine.
	lobby   *state.LobbyInfo
	turn    turn.Coordinator
	chat    chat.Log
	status  conn.Status
	lastErr string
}

// New wires a session against the given server. The returned session runs
// until Close.
func New(parent context.Context, serverURL, playerID, playerName string, log *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		playerID:   playerID,
		playerName: playerName,
		log:        log,
		inbox:      make(chan msg, 64),
		world:      make(chan protocol.Event, 64),
		ctx:        ctx,
		cancel:     cancel,
		turn:       turn.NewCoordinator(),
		status:     conn.StatusDisconnected,
	}
	s.gw = gateway.NewClient(serverURL, log.Named("gateway"))
	s.conn = conn.NewManager(serverURL, log.Named("conn"),
		func(ev protocol.Event) { s.post(channelEvent{Event: ev}) },
		func(st conn.Status, err error) { s.post(statusChange{Status: st, Err: err}) },
	)
	s.dipl = diplomacy.NewBroker(playerID, s.conn, log.Named("diplomacy"))

	go s.loop()
	return s
}

func (s *Session) Close() {
	s.conn.Close()
	s.cancel()
}

func (s *Session) post(m msg) {
	select {
	case s.inbox <- m:
	case <-s.ctx.Done():
	}
}

// Snapshot returns the current session view via the loop, so it is always
// internally consistent.
func (s *Session) Snapshot() View {
	reply := make(chan View, 1)
	closed := View{PlayerID: s.playerID, PlayerName: s.playerName, Connection: conn.StatusDisconnected}
	select {
	case s.inbox <- getView{Reply: reply}:
		select {
		case v := <-reply:
			return v
		case <-s.ctx.Done():
			return closed
		}
	case <-s.ctx.Done():
		return closed
	}
}

// ConnectionStatus reports the channel state without a loop round trip.
func (s *Session) ConnectionStatus() conn.Status { return s.conn.Status() }

// DiplomacyEvents delivers inbound diplomacy traffic verbatim.
func (s *Session) DiplomacyEvents() <-chan protocol.Event { return s.dipl.Events() }

// WorldEvents delivers game_action and world_state_update frames for the
// rendering layer; the session itself does not interpret them.
func (s *Session) WorldEvents() <-chan protocol.Event { return s.world }

// ---- gateway-backed actions ----

// RefreshLobbies lists joinable lobbies. Pure read; only the error string is
// touched on failure.
func (s *Session) RefreshLobbies(ctx context.Context) ([]state.LobbyInfo, error) {
	lobbies, err := s.gw.ListLobbies(ctx)
	if err != nil {
		s.post(requestFailed{Err: err})
		return nil, err
	}
	return lobbies, nil
}

// CreateLobby creates and enters a lobby, then opens the live channel. The
// REST response seeds provisional local state; channel events overwrite it.
func (s *Session) CreateLobby(ctx context.Context, name string, capacity int, mode state.GameMode, turnTimer int) error {
	lobby, err := s.gw.CreateLobby(ctx, gateway.CreateLobbyRequest{
		Name:       name,
		HostID:     s.playerID,
		HostName:   s.playerName,
		MaxPlayers: capacity,
		GameMode:   mode,
		TurnTimer:  turnTimer,
	})
	if err != nil {
		s.post(requestFailed{Err: err})
		return err
	}
	return s.enterLobby(ctx, lobby)
}

func (s *Session) JoinLobby(ctx context.Context, lobbyID string) error {
	lobby, err := s.gw.JoinLobby(ctx, lobbyID, s.playerID, s.playerName)
	if err != nil {
		s.post(requestFailed{Err: err})
		return err
	}
	return s.enterLobby(ctx, lobby)
}

func (s *Session) enterLobby(ctx context.Context, lobby state.LobbyInfo) error {
	s.post(lobbyEntered{Lobby: lobby})
	if err := s.conn.Open(ctx, lobby.ID, s.playerID); err != nil {
		return err
	}
	return nil
}

func (s *Session) LeaveLobby(ctx context.Context) error {
	v := s.Snapshot()
	if v.Lobby == nil {
		return ErrNoLobby
	}
	if err := s.gw.LeaveLobby(ctx, v.Lobby.ID, s.playerID); err != nil {
		s.post(requestFailed{Err: err})
		return err
	}
	s.conn.Close()
	s.post(lobbyLeft{})
	return nil
}

// SelectCountry requests a country assignment. Local state only changes when
// the country_selected event echoes back.
func (s *Session) SelectCountry(ctx context.Context, countryID string) error {
	v := s.Snapshot()
	if v.Lobby == nil {
		return ErrNoLobby
	}
	if err := s.gw.SelectCountry(ctx, v.Lobby.ID, s.playerID, countryID); err != nil {
		s.post(requestFailed{Err: err})
		return err
	}
	return nil
}

func (s *Session) ToggleReady(ctx context.Context) error {
	v := s.Snapshot()
	if v.Lobby == nil {
		return ErrNoLobby
	}
	if err := s.gw.ToggleReady(ctx, v.Lobby.ID, s.playerID); err != nil {
		s.post(requestFailed{Err: err})
		return err
	}
	return nil
}

func (s *Session) StartGame(ctx context.Context) error {
	v := s.Snapshot()
	if v.Lobby == nil {
		return ErrNoLobby
	}
	if v.Lobby.HostID != s.playerID {
		return ErrNotHost
	}
	if err := s.gw.StartGame(ctx, v.Lobby.ID, s.playerID); err != nil {
		s.post(requestFailed{Err: err})
		return err
	}
	return nil
}

// ---- channel-backed actions ----

// SendChat transmits a chat message, clipped to the content bound. The local
// log is only populated by the channel echo, never here.
func (s *Session) SendChat(content string, private bool, recipientID string) error {
	return s.conn.Send(protocol.Chat{
		PlayerID:    s.playerID,
		PlayerName:  s.playerName,
		Content:     chat.Truncate(content),
		IsPrivate:   private,
		RecipientID: recipientID,
	})
}

// EndTurn submits the local turn and emits end_turn for the current year.
// The year counter does not move until the authority confirms.
func (s *Session) EndTurn() error {
	reply := make(chan error, 1)
	s.post(endTurnReq{Reply: reply})
	select {
	case err := <-reply:
		return err
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// SendGameAction emits a game action for the current year. Whether the
// authority accepts it outside the local turn window is its call, not ours.
func (s *Session) SendGameAction(actionType string, data json.RawMessage) error {
	reply := make(chan error, 1)
	s.post(gameActionReq{ActionType: actionType, Data: data, Reply: reply})
	select {
	case err := <-reply:
		return err
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// SendDiplomacyRequest fires a proposal at another player and returns its
// request id ("" when dropped because the channel is down).
func (s *Session) SendDiplomacyRequest(targetID, requestType string, data json.RawMessage) string {
	return s.dipl.SendRequest(targetID, requestType, data)
}

func (s *Session) RespondDiplomacy(requestID string, accepted bool) {
	s.dipl.SendResponse(requestID, accepted)
}

// ---- local actions ----

func (s *Session) MarkChatRead() { s.post(markChatRead{}) }

func (s *Session) ClearError() { s.post(clearError{}) }
