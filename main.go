package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/locknote/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewRootCommand().ExecuteContext(ctx); err != nil {
		cmd.HandleError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
