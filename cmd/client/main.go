package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/worldsim/client/internal/config"
	"github.com/worldsim/client/internal/session"
	"github.com/worldsim/client/internal/state"
)

func main() {
	cfg := config.Load()

	logCfg := zap.NewProductionConfig()
	if cfg.Debug {
		logCfg = zap.NewDevelopmentConfig()
	}
	log, err := logCfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	s := session.New(ctx, cfg.ServerURL, cfg.PlayerID, cfg.PlayerName, log)
	defer s.Close()

	go drainEvents(s)

	fmt.Printf("connected to %s as %s (%s)\n", cfg.ServerURL, cfg.PlayerName, cfg.PlayerID)
	repl(ctx, s)
}

func drainEvents(s *session.Session) {
	for {
		select {
		case ev := <-s.WorldEvents():
			fmt.Printf("[world] %+v\n", ev)
		case ev := <-s.DiplomacyEvents():
			fmt.Printf("[diplomacy] %+v\n", ev)
		}
	}
}

func repl(ctx context.Context, s *session.Session) {
	sc := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			fmt.Print("> ")
			continue
		}
		if fields[0] == "quit" {
			return
		}
		if err := run(ctx, s, fields); err != nil {
			fmt.Println("error:", err)
		}
		fmt.Print("> ")
	}
}

func run(ctx context.Context, s *session.Session, args []string) error {
	switch args[0] {
	case "list":
		lobbies, err := s.RefreshLobbies(ctx)
		if err != nil {
			return err
		}
		for _, l := range lobbies {
			fmt.Printf("%s  %-20s %d/%d  %s\n", l.ID, l.Name, len(l.Players), l.Capacity, l.Status)
		}
	case "create":
		if len(args) < 3 {
			return fmt.Errorf("usage: create <name> <capacity> [mode]")
		}
		capacity, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("bad capacity: %w", err)
		}
		mode := state.ModeSimultaneous
		if len(args) > 3 && args[3] == string(state.ModeTurnBased) {
			mode = state.ModeTurnBased
		}
		return s.CreateLobby(ctx, args[1], capacity, mode, 0)
	case "join":
		if len(args) < 2 {
			return fmt.Errorf("usage: join <lobby-id>")
		}
		return s.JoinLobby(ctx, args[1])
	case "leave":
		return s.LeaveLobby(ctx)
	case "country":
		if len(args) < 2 {
			return fmt.Errorf("usage: country <country-id>")
		}
		return s.SelectCountry(ctx, args[1])
	case "ready":
		return s.ToggleReady(ctx)
	case "start":
		return s.StartGame(ctx)
	case "say":
		return s.SendChat(strings.Join(args[1:], " "), false, "")
	case "end":
		return s.EndTurn()
	case "status":
		printView(s.Snapshot())
		s.MarkChatRead()
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func printView(v session.View) {
	fmt.Println("connection:", v.Connection)
	if v.LastError != "" {
		fmt.Println("last error:", v.LastError)
	}
	if v.Lobby == nil {
		fmt.Println("not in a lobby")
		return
	}
	fmt.Printf("lobby %s (%s) status=%s year=%d submitted=%v\n",
		v.Lobby.Name, v.Lobby.ID, v.Lobby.Status, v.Turn.Year, v.Turn.Submitted)
	for _, p := range v.Lobby.Players {
		marker := " "
		if p.ID == v.Lobby.HostID {
			marker = "*"
		}
		fmt.Printf("  %s %-16s country=%-8s ready=%v\n", marker, p.Name, p.Country, p.Ready)
	}
	for _, m := range v.Chat {
		fmt.Printf("  <%s> %s\n", m.PlayerName, m.Content)
	}
}
