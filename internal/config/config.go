package config

import (
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerURL  string
	PlayerID   string
	PlayerName string
	Debug      bool
}

// Load reads .env (if present) then the environment. A missing player id
// gets a fresh uuid; the authority keys everything on it.
func Load() Config {
	_ = godotenv.Load()

	c := Config{}
	c.ServerURL = getenv("WORLDSIM_SERVER_URL", "http://localhost:8080")
	c.PlayerName = getenv("WORLDSIM_PLAYER_NAME", "player")
	c.PlayerID = os.Getenv("WORLDSIM_PLAYER_ID")
	if c.PlayerID == "" {
		c.PlayerID = uuid.NewString()
	}
	c.Debug = getenv("WORLDSIM_DEBUG", "false") == "true"
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
