package main

import (
	"context"
	"fmt"
	"os"

	"godesign/internal/config"
	"godesign/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	c, err := container.New(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer c.Shutdown(ctx)

	if err := newRootCmd(c).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		c.Shutdown(ctx)
		os.Exit(1)
	}
}

func newRootCmd(c *container.Container) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "godesign",
		Short:         "Draw synthetic experiment datasets from design files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newDrawCmd(c),
		newDescribeCmd(c),
		newValidateCmd(c),
		newHistoryCmd(c),
		newInitCmd(),
	)
	return rootCmd
}
