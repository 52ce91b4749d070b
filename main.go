// main is the entry point of the sitpulse CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/sitpulse/cmd"
	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/huangsam/sitpulse/internal/iocache"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and returns the process exit code.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer iocache.CloseStores()
	defer contract.SyncLogger()

	cmd.SetCacheManager(iocache.Manager)
	err := cmd.ExecuteContext(ctx)
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	return 0
}
