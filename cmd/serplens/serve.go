package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	serphttp "github.com/serplens/serplens/http"
)

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	srv := serphttp.NewServer()
	srv.Addr = c.Addr
	srv.Runner = deps.Runner
	srv.Logger = deps.Logger

	if err := srv.Open(); err != nil {
		return fmt.Errorf("failed to listen on %q: %w", c.Addr, err)
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", srv.URL())

	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	fmt.Fprintln(deps.Stdout, "Shutting down")

	// Let in-flight analyses reach a terminal state before closing.
	if err := deps.Runner.Close(); err != nil {
		return err
	}
	return srv.Close()
}
