// Command jdex maintains a Johnny Decimal index in a local SQLite file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmeg8r/jdex/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
