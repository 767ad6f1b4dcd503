package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/concolato/flask-upgrade/internal/config"
	"github.com/concolato/flask-upgrade/internal/pyfront"
	"github.com/concolato/flask-upgrade/internal/runner"
)

func runUpgrade(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals gracefully, mainly for watch mode.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// The structural frontend is checked once, before any traversal; without
	// it the teardown pass cannot be trusted and the whole run aborts.
	frontend := pyfront.NewPython()
	if err := pyfront.Probe(frontend); err != nil {
		return fmt.Errorf("structural analysis is unavailable: %w", err)
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("no-teardown-detection") {
		cfg.Rewrite.TeardownDetection = !noTeardown
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}

	var progress runner.Progress
	if showProgress && !quiet {
		progress = NewScanProgress()
	}

	r, err := runner.New(cfg, frontend, os.Stdout, progress)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Run(roots); err != nil {
		return err
	}

	if !watchFlag {
		return nil
	}

	w, err := runner.NewWatcher(r, roots)
	if err != nil {
		return fmt.Errorf("failed to start watch mode: %w", err)
	}
	defer w.Stop()

	w.Start(ctx)
	if !quiet {
		log.Println("Watching for changes, Ctrl+C to stop...")
	}
	<-ctx.Done()
	return nil
}
