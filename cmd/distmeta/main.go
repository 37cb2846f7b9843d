// Package main is the entry point for the distmeta CLI.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/git-pkgs/distmeta/cmd/distmeta/commands"
	"github.com/git-pkgs/distmeta/internal/app"
	"github.com/git-pkgs/distmeta/internal/logger"
)

func main() {
	log := logger.New()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, app.New(log, nil, nil)))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, application *app.App) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer application.Close()

	application.Logger.SetOutput(stderr)

	cli := commands.New(application)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		application.Logger.Error(err)
		return 1
	}
	return 0
}
