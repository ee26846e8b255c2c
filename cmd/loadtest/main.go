package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EmpoweredVote/EV-Notepad/internal/loadtest"
	"go.uber.org/zap"
)

func main() {
	var opts loadtest.Options
	flag.StringVar(&opts.Host, "host", "http://localhost:5050", "base URL of the server")
	flag.IntVar(&opts.Users, "users", 10, "concurrent simulated users")
	flag.DurationVar(&opts.Duration, "duration", time.Minute, "how long to run")
	flag.DurationVar(&opts.WaitMin, "wait-min", time.Second, "minimum think time between tasks")
	flag.DurationVar(&opts.WaitMax, "wait-max", 5*time.Second, "maximum think time between tasks")
	flag.StringVar(&opts.Email, "email", "user@example.com", "seeded account for notepad users")
	flag.StringVar(&opts.Password, "password", "test1234", "password of the seeded account")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	r, err := loadtest.NewRunner(opts, logger)
	if err != nil {
		logger.Fatal("invalid options", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := r.Run(ctx)
	if err != nil {
		logger.Fatal("load test failed", zap.Error(err))
	}
	if _, failures := s.Totals(); failures > 0 {
		os.Exit(1)
	}
}
