// Package gateway is the REST client for lobby administration. It only
// talks; every state transition driven by its responses happens in the
// session, and channel events remain authoritative over anything returned
// here.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/worldsim/client/internal/state"
)

const basePath = "/multiplayer"

type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

func NewClient(baseURL string, log *zap.Logger) *Client {
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  log,
	}
}

type CreateLobbyRequest struct {
	Name       string         `json:"name"`
	HostID     string         `json:"host_id"`
	HostName   string         `json:"host_name"`
	MaxPlayers int            `json:"max_players"`
	GameMode   state.GameMode `json:"game_mode"`
	TurnTimer  int            `json:"turn_timer"`
}

func (c *Client) ListLobbies(ctx context.Context) ([]state.LobbyInfo, error) {
	var out struct {
		Lobbies []state.LobbyInfo `json:"lobbies"`
	}
	if err := c.do(ctx, http.MethodGet, basePath+"/lobbies", nil, &out); err != nil {
		return nil, err
	}
	return out.Lobbies, nil
}

func (c *Client) CreateLobby(ctx context.Context, req CreateLobbyRequest) (state.LobbyInfo, error) {
	var lobby state.LobbyInfo
	err := c.do(ctx, http.MethodPost, basePath+"/lobbies", req, &lobby)
	return lobby, err
}

func (c *Client) JoinLobby(ctx context.Context, lobbyID, playerID, playerName string) (state.LobbyInfo, error) {
	body := struct {
		PlayerID   string `json:"player_id"`
		PlayerName string `json:"player_name"`
	}{playerID, playerName}
	var lobby state.LobbyInfo
	err := c.do(ctx, http.MethodPost, basePath+"/lobbies/"+lobbyID+"/join", body, &lobby)
	return lobby, err
}

func (c *Client) LeaveLobby(ctx context.Context, lobbyID, playerID string) error {
	body := struct {
		PlayerID string `json:"player_id"`
	}{playerID}
	return c.do(ctx, http.MethodPost, basePath+"/lobbies/"+lobbyID+"/leave", body, nil)
}

func (c *Client) SelectCountry(ctx context.Context, lobbyID, playerID, countryID string) error {
	body := struct {
		PlayerID  string `json:"player_id"`
		CountryID string `json:"country_id"`
	}{playerID, countryID}
	return c.do(ctx, http.MethodPost, basePath+"/lobbies/"+lobbyID+"/select-country", body, nil)
}

func (c *Client) ToggleReady(ctx context.Context, lobbyID, playerID string) error {
	body := struct {
		PlayerID string `json:"player_id"`
	}{playerID}
	return c.do(ctx, http.MethodPost, basePath+"/lobbies/"+lobbyID+"/ready", body, nil)
}

func (c *Client) StartGame(ctx context.Context, lobbyID, hostID string) error {
	body := struct {
		HostID string `json:"host_id"`
	}{hostID}
	return c.do(ctx, http.MethodPost, basePath+"/lobbies/"+lobbyID+"/start", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, buf)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("gateway request", zap.String("method", method), zap.String("path", path))
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// apiError surfaces the server-provided message when the body carries one,
// with a generic fallback otherwise.
func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("%s", payload.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}
