package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/tamildecl/internal/archive"
	"codeberg.org/snonux/tamildecl/internal/cli"
	"codeberg.org/snonux/tamildecl/internal/models"
	"codeberg.org/snonux/tamildecl/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		cli.ResolveFlags(flags)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	ctx := cmd.Context()

	logFile, err := cli.InitLogger(flags.LogLevel, flags.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	// Handle --archive flag
	if flags.Archive {
		archived, err := archive.ArchiveHistory(flags.HistoryDB)
		if err != nil {
			return fmt.Errorf("failed to archive history: %w", err)
		}
		fmt.Printf("History archived to: %s\n", archived)
		return nil
	}

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cli.GetOpenAIKey(), viper.GetString("transliterate.openai_base_url"))
		return lister.ListAvailableModels(ctx, os.Stdout)
	}

	// Handle --history flag
	if flags.History > 0 {
		return processor.PrintHistory(ctx, flags.HistoryDB, flags.History, os.Stdout)
	}

	// Create processor
	proc, err := processor.NewProcessor(ctx, flags)
	if err != nil {
		return err
	}
	defer func() {
		if err := proc.Close(); err != nil {
			log.Warn("failed to close processor", "err", err)
		}
	}()

	switch {
	case flags.BatchFile != "":
		return proc.ProcessBatch(ctx, os.Stdout)
	case len(args) > 0:
		return proc.ProcessSingleQuery(ctx, args[0], os.Stdout)
	default:
		// No input provided - serve the web form by default
		return proc.Serve(ctx)
	}
}
