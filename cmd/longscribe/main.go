package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/longscribe/internal/cli"
	"github.com/kbukum/longscribe/internal/output"
)

func main() {
	err := run()
	code := cli.ExitCode(err)
	if code == cli.ExitFailure {
		formatter := output.NewFormatter(os.Stderr)
		formatter.Error(err.Error())
	}
	os.Exit(code)
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &cli.Dependencies{
		Out: os.Stdout,
		Err: os.Stderr,
	}

	return cli.NewRootCmd(deps).ExecuteContext(ctx)
}
