package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type cli struct {
	LogLevel string `name:"log-level" default:"info" enum:"debug,info,warn,error" env:"GROUPCTL_LOG_LEVEL" help:"Log level."`
	LogJSON  bool   `name:"log-json" env:"GROUPCTL_LOG_JSON" help:"Emit logs as JSON."`

	Tree     treeCmd     `cmd:"" help:"Print the customer group tree."`
	Validate validateCmd `cmd:"" help:"Validate a dataset against the schema and integrity rules."`
	Chart    chartCmd    `cmd:"" help:"Render the discount chart as a standalone HTML page."`
	Import   importCmd   `cmd:"" help:"Load a YAML dataset into a SQL database."`
	Serve    serveCmd    `cmd:"" help:"Serve the customer group page, JSON API and metrics."`
}

// runtime is bound into every command's Run method.
type runtime struct {
	logger *slog.Logger
	out    *os.File
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	var root cli
	ctx := kong.Parse(&root,
		kong.Name("groupctl"),
		kong.Description("Inspect, validate and serve hierarchical customer groups."),
		kong.UsageOnError(),
	)
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := &runtime{logger: newLogger(root.LogLevel, root.LogJSON), out: os.Stdout}
	ctx.BindTo(runCtx, (*context.Context)(nil))
	err := ctx.Run(rt)
	ctx.FatalIfErrorf(err)
}

func newLogger(level string, asJSON bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func fail(format string, args ...any) error {
	return fmt.Errorf("groupctl: "+format, args...)
}
