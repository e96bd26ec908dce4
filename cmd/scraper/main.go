package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"go-linkedin-extractor/internal/app"
	"go-linkedin-extractor/internal/config"
	"go-linkedin-extractor/internal/export"
	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/internal/storage"
	"go-linkedin-extractor/pkg/logging"
)

var (
	configPath string
	outDir     string
	maxPages   int
)

var rootCmd = &cobra.Command{
	Use:          "extractor-scraper",
	Short:        "🚀 Run one paginated extraction to completion and export the results",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to the YAML config file")
	rootCmd.Flags().StringVarP(&outDir, "out", "o", "", "export directory (default: popup.export_dir)")
	rootCmd.Flags().IntVar(&maxPages, "max-pages", 0, "override automation.max_pages")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(parent context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if maxPages > 0 {
		cfg.Automation.MaxPages = maxPages
	}
	if outDir == "" {
		outDir = cfg.Popup.ExportDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel)
	defer log.Sync()
	log.Info("🚀 starting LinkedIn extraction run", "start_url", cfg.StartURL, "max_pages", cfg.Automation.MaxPages)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := app.OpenStore(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer kv.Close()
	gateway := storage.NewGateway(kv, log)

	outcome := &stopOutcome{}
	notifier, bot, err := app.Notifiers(cfg.Telegram, log, outcome)
	if err != nil {
		return err
	}
	if bot != nil {
		botCtx, stopBot := context.WithCancel(context.Background())
		defer stopBot()
		go bot.Run(botCtx)
	}

	br, err := app.OpenBrowser(ctx, cfg, log)
	if err != nil {
		return errors.Wrap(err, "failed to init browser")
	}
	defer br.Close()

	ctrl := app.Controller(br.Page, gateway, notifier, cfg.Automation, log)
	ctrl.Start()

	finished := make(chan struct{})
	go func() {
		ctrl.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-ctx.Done():
		log.Info("🛑 interrupted, finishing the current page")
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := ctrl.Close(closeCtx); err != nil {
			log.Warn("⚠️ automation did not drain", "err", err)
		}
	}

	summary, err := exportAll(context.Background(), gateway, outDir, log)
	if err != nil {
		return err
	}
	log.Info("🏁 execution finished")

	if bot != nil {
		if reason := outcome.Reason(); reason == messaging.StopFailed {
			if err := bot.SendError(errors.Newf("automation stopped early (%s)", reason)); err != nil {
				log.Warn("⚠️ failed to send error to telegram", "err", err)
			}
		}
		if err := bot.SendStatus(summary); err != nil {
			log.Warn("⚠️ failed to send status to telegram", "err", err)
		}
		// give the queued lifecycle messages a moment to go out
		time.Sleep(time.Second)
	}
	return nil
}

func exportAll(ctx context.Context, gateway *storage.Gateway, dir string, log *logging.Logger) (string, error) {
	jobs, err := gateway.GetJobs(ctx)
	if err != nil {
		return "", err
	}
	details, err := gateway.GetDetails(ctx)
	if err != nil {
		return "", err
	}

	path, err := export.WriteJobs(dir, jobs)
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		log.Info("ℹ️ no jobs to save")
	case err != nil:
		return "", err
	default:
		log.Info("📁 jobs saved", "path", path, "count", len(jobs))
	}

	path, err = export.WriteDetails(dir, details)
	switch {
	case errors.Is(err, export.ErrNothingToExport):
	case err != nil:
		return "", err
	default:
		log.Info("📁 job details saved", "path", path, "count", len(details))
	}

	missing, err := gateway.MissingDetails(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Extraction finished: %d jobs stored, %d without details.", len(jobs), missing), nil
}

// stopOutcome remembers why the last run stopped.
type stopOutcome struct {
	mu     sync.Mutex
	reason messaging.StopReason
}

func (o *stopOutcome) Notify(ev messaging.Event) {
	if ev.Action != messaging.ActionAutomationStopped {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reason = ev.Reason
}

func (o *stopOutcome) Reason() messaging.StopReason {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reason
}
