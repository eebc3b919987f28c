package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kelasid/ruangkelas-backend/internal/config"
	"github.com/kelasid/ruangkelas-backend/internal/logger"
	"github.com/kelasid/ruangkelas-backend/internal/model"
	"github.com/kelasid/ruangkelas-backend/internal/service"
)

// mint-token is a dev utility: it prints a signed room access credential so a
// room can be joined without going through the HTTP API.
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup("warn", cfg.LogFormat)

	// ─── CLI Flags ─────────────────────────────────────────────────────
	room := flag.String("room", "", "room name (required)")
	identity := flag.String("identity", "", "participant identity (required)")
	role := flag.String("role", "student", "participant role: teacher or student")
	flag.Parse()

	if *room == "" || *identity == "" {
		fmt.Println("Usage: mint-token -room <name> -identity <name> [-role teacher|student]")
		os.Exit(1)
	}

	// No Redis here: the session registry is skipped for CLI-minted tokens.
	roomService := service.NewRoomService(cfg, nil, log)

	resp, err := roomService.IssueToken(context.Background(), *room, *identity, model.RoomRole(*role))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to mint token")
	}

	fmt.Println("=== Room Access Token ===")
	fmt.Printf("Room:       %s\n", resp.RoomName)
	fmt.Printf("Identity:   %s\n", resp.Identity)
	fmt.Printf("Role:       %s\n", resp.Role)
	fmt.Printf("Expires At: %s\n", resp.ExpiresAt)
	fmt.Printf("\n%s\n", resp.Token)
}
