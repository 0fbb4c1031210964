package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "treesync",
		Short: "Compare two directory listings and emit a synchronization plan",
		Long: "treesync reads two captured recursive directory listings (left and right), classifies\n" +
			"what exists on one side only or is newer on one side, and writes an ordered plan of\n" +
			"create, copy and delete operations. It never touches the trees themselves.",
		Version: Detailed(),
	}
	root.AddCommand(newPlanCmd(), newVersionCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
