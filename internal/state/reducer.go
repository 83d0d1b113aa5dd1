package state

import (
	"slices"

	"github.com/worldsim/client/pkg/protocol"
)

// Apply reduces one channel event into a new LobbyInfo. Reducers are pure
// and idempotent: replaying the same event value is a no-op, events naming
// unknown player ids are ignored, and the lobby status never regresses.
// Channel events are authoritative over whatever a REST response wrote, so
// these properties are what keeps a racing REST/channel pair from corrupting
// anything.
func Apply(l LobbyInfo, ev protocol.Event) LobbyInfo {
	switch e := ev.(type) {
	case protocol.PlayerJoined:
		return applyJoined(l, e)
	case protocol.PlayerLeft:
		return applyLeft(l, e)
	case protocol.PlayerReady:
		return updatePlayer(l, e.PlayerID, func(p *PlayerInfo) {
			p.Ready = e.Ready
		})
	case protocol.CountrySelected:
		return applyCountry(l, e)
	case protocol.GameStarted:
		return advanceStatus(l, StatusInProgress)
	case protocol.GameOver:
		return advanceStatus(l, StatusFinished)
	case protocol.HostChanged:
		return applyHost(l, e)
	default:
		return l
	}
}

func applyJoined(l LobbyInfo, e protocol.PlayerJoined) LobbyInfo {
	if _, ok := l.Player(e.PlayerID); ok {
		return l
	}
	if l.Capacity > 0 && len(l.Players) >= l.Capacity {
		return l
	}
	players := slices.Clone(l.Players)
	players = append(players, PlayerInfo{
		ID:       e.PlayerID,
		Name:     e.PlayerName,
		Host:     e.PlayerID == l.HostID,
		JoinedAt: e.JoinedAt,
	})
	l.Players = players
	return l
}

func applyLeft(l LobbyInfo, e protocol.PlayerLeft) LobbyInfo {
	idx := slices.IndexFunc(l.Players, func(p PlayerInfo) bool {
		return p.ID == e.PlayerID
	})
	if idx < 0 {
		return l
	}
	l.Players = slices.Delete(slices.Clone(l.Players), idx, idx+1)
	if l.HostID == e.PlayerID {
		// No local reassignment; the authority resolves it via host_changed.
		l.HostID = ""
	}
	return l
}

func applyCountry(l LobbyInfo, e protocol.CountrySelected) LobbyInfo {
	if e.CountryID != "" {
		for _, p := range l.Players {
			if p.Country == e.CountryID && p.ID != e.PlayerID {
				return l
			}
		}
	}
	return updatePlayer(l, e.PlayerID, func(p *PlayerInfo) {
		p.Country = e.CountryID
	})
}

func applyHost(l LobbyInfo, e protocol.HostChanged) LobbyInfo {
	if _, ok := l.Player(e.HostID); !ok {
		return l
	}
	l.HostID = e.HostID
	players := slices.Clone(l.Players)
	for i := range players {
		players[i].Host = players[i].ID == e.HostID
	}
	l.Players = players
	return l
}

func advanceStatus(l LobbyInfo, to Status) LobbyInfo {
	if statusRank(to) <= statusRank(l.Status) {
		return l
	}
	l.Status = to
	return l
}

func updatePlayer(l LobbyInfo, id string, fn func(*PlayerInfo)) LobbyInfo {
	idx := slices.IndexFunc(l.Players, func(p PlayerInfo) bool {
		return p.ID == id
	})
	if idx < 0 {
		return l
	}
	players := slices.Clone(l.Players)
	fn(&players[idx])
	l.Players = players
	return l
}
