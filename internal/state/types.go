package state

import "time"

type GameMode string

const (
	ModeSimultaneous GameMode = "simultaneous"
	ModeTurnBased    GameMode = "turn_based"
)

type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// statusRank orders lobby statuses; transitions never go backward.
func statusRank(s Status) int {
	switch s {
	case StatusWaiting:
		return 0
	case StatusInProgress:
		return 1
	case StatusFinished:
		return 2
	default:
		return -1
	}
}

type PlayerInfo struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Country  string    `json:"country,omitempty"`
	Ready    bool      `json:"ready"`
	Host     bool      `json:"is_host"`
	JoinedAt time.Time `json:"joined_at"`
}

// LobbyInfo is the client's view of one lobby. Players are kept in join
// order; the slice is copied before any mutation so views stay stable.
type LobbyInfo struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	HostID     string       `json:"host_id"`
	Capacity   int          `json:"max_players"`
	Mode       GameMode     `json:"game_mode"`
	TurnTimer  int          `json:"turn_timer"`
	Status     Status       `json:"status"`
	Players    []PlayerInfo `json:"players"`
	CreatedAt  time.Time    `json:"created_at"`
	ScenarioID string       `json:"scenario_id,omitempty"`
}

// Player returns the roster entry for id, if present.
func (l LobbyInfo) Player(id string) (PlayerInfo, bool) {
	for _, p := range l.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerInfo{}, false
}
