package session

import (
	"slices"

	"go.uber.org/zap"

	"github.com/worldsim/client/internal/chat"
	"github.com/worldsim/client/internal/conn"
	"github.com/worldsim/client/internal/state"
	"github.com/worldsim/client/internal/turn"
	"github.com/worldsim/client/pkg/protocol"
)

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case m := <-s.inbox:
			s.handle(m)
		}
	}
}

func (s *Session) handle(m msg) {
	switch m := m.(type) {
	case channelEvent:
		s.applyEvent(m.Event)

	case statusChange:
		s.status = m.Status
		if m.Err != nil {
			s.lastErr = m.Err.Error()
		}
		if m.Status == conn.StatusDisconnected && m.Err != nil {
			// Unexpected drop: the lobby view is stale and the membership is
			// gone until a fresh join. Chat goes with the lobby.
			s.resetLobby()
		}

	case lobbyEntered:
		lobby := m.Lobby
		s.lobby = &lobby
		s.turn = turn.NewCoordinator()
		s.chat = chat.Log{}

	case lobbyLeft:
		s.resetLobby()

	case requestFailed:
		s.lastErr = m.Err.Error()

	case markChatRead:
		s.chat.MarkRead()

	case clearError:
		s.lastErr = ""

	case endTurnReq:
		m.Reply <- s.endTurn()

	case gameActionReq:
		if s.lobby == nil {
			m.Reply <- ErrNoLobby
			break
		}
		m.Reply <- s.conn.Send(protocol.GameAction{
			PlayerID:   s.playerID,
			ActionType: m.ActionType,
			Data:       m.Data,
			Year:       s.turn.Year,
		})

	case getView:
		m.Reply <- s.view()
	}
}

func (s *Session) endTurn() error {
	if s.lobby == nil {
		return ErrNoLobby
	}
	if s.turn.Submitted {
		return ErrTurnSubmitted
	}
	err := s.conn.Send(protocol.EndTurn{PlayerID: s.playerID, Year: s.turn.Year})
	if err != nil {
		return err
	}
	s.turn = s.turn.Submit()
	return nil
}

// applyEvent routes one decoded channel event into the owning component.
// Channel events are authoritative; provisional REST state yields to them,
// and the reducers' idempotence makes replays and races harmless.
func (s *Session) applyEvent(ev protocol.Event) {
	switch e := ev.(type) {
	case protocol.GameStarted:
		s.reduceLobby(ev)
		s.turn = s.turn.Start(e.StartYear)

	case protocol.PlayerJoined, protocol.PlayerLeft, protocol.PlayerReady,
		protocol.CountrySelected, protocol.HostChanged, protocol.GameOver:
		s.reduceLobby(ev)

	case protocol.ChatMessage:
		s.chat.Append(e)

	case protocol.TurnEnded:
		s.turn = s.turn.ObserveEnded(e.PlayerID)

	case protocol.AllTurnsComplete:
		s.turn = s.turn.Advance(e.Year)

	case protocol.DiplomacyRequestEvent, protocol.DiplomacyResponseEvent:
		s.dipl.Deliver(ev)

	case protocol.GameActionEvent, protocol.WorldStateUpdate:
		select {
		case s.world <- ev:
		default:
			s.log.Warn("world event dropped, consumer too slow")
		}

	case protocol.ServerError:
		s.lastErr = e.Message

	case protocol.Unknown:
		s.log.Warn("unrecognized event", zap.String("type", string(e.Type)))
	}
}

func (s *Session) reduceLobby(ev protocol.Event) {
	if s.lobby == nil {
		return
	}
	next := state.Apply(*s.lobby, ev)
	s.lobby = &next
}

func (s *Session) resetLobby() {
	s.lobby = nil
	s.turn = turn.NewCoordinator()
	s.chat = chat.Log{}
}

func (s *Session) view() View {
	v := View{
		PlayerID:   s.playerID,
		PlayerName: s.playerName,
		Connection: s.status,
		Turn:       s.turn,
		Chat:       s.chat.Messages(),
		Unread:     s.chat.Unread(),
		LastError:  s.lastErr,
	}
	if s.lobby != nil {
		lobby := *s.lobby
		lobby.Players = slices.Clone(lobby.Players)
		v.Lobby = &lobby
	}
	return v
}
