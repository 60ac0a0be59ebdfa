package main

import (
	"flag"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/fdg312/careview/internal/config"
	"github.com/fdg312/careview/internal/dbmigrate"
	"github.com/fdg312/careview/internal/logging"
)

func main() {
	dir := flag.String("dir", "", "migrations directory on disk (default: embedded migrations)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/migrate [-dir migrations] [up|status|down]")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	command := flag.Arg(0)
	switch command {
	case "up", "status", "down":
	default:
		fmt.Fprintf(os.Stderr, "unsupported command %q (allowed: up, status, down)\n", command)
		os.Exit(2)
	}

	cfg := config.Load()
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	target, err := dbmigrate.SelectTarget(cfg, false)
	if err != nil {
		logger.Fatal("select database url", zap.Error(err))
	}

	if target.Warning != "" {
		logger.Warn("migrate", zap.String("warning", target.Warning))
	}
	logger.Info("migrate", zap.String("command", command), zap.String("using", target.Source), zap.String("dir", displayDir(*dir)))

	if err := dbmigrate.Run(command, target.URL, *dir); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	logger.Info("migrate completed", zap.String("command", command))
}

func displayDir(dir string) string {
	if dir == "" {
		return "(embedded)"
	}
	return dir
}
