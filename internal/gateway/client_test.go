package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/worldsim/client/internal/state"
)

// fakeGateway stands in for the remote lobby service.
func fakeGateway(t *testing.T, register func(chi.Router)) *Client {
	t.Helper()
	r := chi.NewRouter()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, zap.NewNop())
}

func TestCreateLobbySendsIdentityAndDecodesLobby(t *testing.T) {
	var got CreateLobbyRequest
	c := fakeGateway(t, func(r chi.Router) {
		r.Post("/multiplayer/lobbies", func(w http.ResponseWriter, req *http.Request) {
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(state.LobbyInfo{
				ID:       "l1",
				Name:     got.Name,
				HostID:   got.HostID,
				Capacity: got.MaxPlayers,
				Mode:     got.GameMode,
				Status:   state.StatusWaiting,
				Players: []state.PlayerInfo{
					{ID: got.HostID, Name: got.HostName, Host: true},
				},
			})
		})
	})

	lobby, err := c.CreateLobby(context.Background(), CreateLobbyRequest{
		Name:       "cold front",
		HostID:     "a",
		HostName:   "Alice",
		MaxPlayers: 4,
		GameMode:   state.ModeTurnBased,
	})
	require.NoError(t, err)

	require.Equal(t, "a", got.HostID)
	require.Equal(t, state.ModeTurnBased, got.GameMode)
	require.Equal(t, "l1", lobby.ID)
	require.Equal(t, state.StatusWaiting, lobby.Status)
	require.Len(t, lobby.Players, 1)
}

func TestListLobbies(t *testing.T) {
	c := fakeGateway(t, func(r chi.Router) {
		r.Get("/multiplayer/lobbies", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"lobbies":[{"id":"l1","name":"alpha"},{"id":"l2","name":"beta"}]}`))
		})
	})

	lobbies, err := c.ListLobbies(context.Background())
	require.NoError(t, err)
	require.Len(t, lobbies, 2)
	require.Equal(t, "beta", lobbies[1].Name)
}

func TestServerErrorBodyIsSurfaced(t *testing.T) {
	c := fakeGateway(t, func(r chi.Router) {
		r.Post("/multiplayer/lobbies/{id}/join", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"lobby is full"}`))
		})
	})

	_, err := c.JoinLobby(context.Background(), "l1", "b", "Bob")
	require.Error(t, err)
	require.EqualError(t, err, "lobby is full")
}

func TestNonJSONErrorFallsBackToStatus(t *testing.T) {
	c := fakeGateway(t, func(r chi.Router) {
		r.Post("/multiplayer/lobbies/{id}/start", func(w http.ResponseWriter, req *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
	})

	err := c.StartGame(context.Background(), "l1", "a")
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
}

func TestBodylessOperationsPostTheRightShapes(t *testing.T) {
	bodies := map[string]map[string]any{}
	capture := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			var m map[string]any
			require.NoError(t, json.NewDecoder(req.Body).Decode(&m))
			bodies[name] = m
			w.WriteHeader(http.StatusOK)
		}
	}
	c := fakeGateway(t, func(r chi.Router) {
		r.Post("/multiplayer/lobbies/{id}/leave", capture("leave"))
		r.Post("/multiplayer/lobbies/{id}/select-country", capture("select"))
		r.Post("/multiplayer/lobbies/{id}/ready", capture("ready"))
	})

	ctx := context.Background()
	require.NoError(t, c.LeaveLobby(ctx, "l1", "a"))
	require.NoError(t, c.SelectCountry(ctx, "l1", "a", "fr"))
	require.NoError(t, c.ToggleReady(ctx, "l1", "a"))

	require.Equal(t, map[string]any{"player_id": "a"}, bodies["leave"])
	require.Equal(t, map[string]any{"player_id": "a", "country_id": "fr"}, bodies["select"])
	require.Equal(t, map[string]any{"player_id": "a"}, bodies["ready"])
}
