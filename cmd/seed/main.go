package main

import (
	"context"
	"log"

	"github.com/EmpoweredVote/EV-Notepad/internal/auth"
	"github.com/EmpoweredVote/EV-Notepad/internal/config"
	"github.com/EmpoweredVote/EV-Notepad/internal/db"
	"github.com/EmpoweredVote/EV-Notepad/internal/notepad"
	"github.com/EmpoweredVote/EV-Notepad/internal/profile"
	"github.com/EmpoweredVote/EV-Notepad/internal/seeds"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gdb, err := db.Connect(cfg, logger.Named("db"))
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer func() { _ = db.Close(gdb) }()

	if err := db.Migrate(gdb); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	users := auth.NewUserStore(gdb)
	s := &seeds.Seeder{
		Auth: auth.NewService(gdb, users, auth.NewSessionStore(gdb), profile.NewStore(gdb),
			cfg.BcryptCost, cfg.SessionTTL, logger.Named("auth")),
		Users:    users,
		Notepads: notepad.NewService(notepad.NewStore(gdb), logger.Named("notepad")),
		Log:      logger.Named("seed"),
	}

	if err := s.SeedAll(context.Background()); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
}
