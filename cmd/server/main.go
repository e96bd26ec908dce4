package main

import (
	"context"
	"os"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"go-linkedin-extractor/internal/app"
	"go-linkedin-extractor/internal/config"
	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/internal/schedule"
	"go-linkedin-extractor/internal/server"
	"go-linkedin-extractor/internal/storage"
	"go-linkedin-extractor/pkg/logging"
	"go-linkedin-extractor/pkg/shutdown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "extractor-server",
	Short: "🌐 Attach to a LinkedIn jobs page and serve extraction/automation messages",
	Long: `Opens a browser on the configured jobs search page and exposes it over HTTP:

  POST /api/message   extractJobs, startAutomation, stopAutomation, getStatus
  GET  /ws            pushed events (automationStarted, automationStopped, updateJobCount)
  GET  /api/jobs      stored job listings
  GET  /api/details   stored job details
  GET  /api/page      current page url`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to the YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel)
	defer log.Sync()
	log.Info("🔧 config loaded", "start_url", cfg.StartURL, "storage", cfg.Storage.Driver)

	kv, err := app.OpenStore(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer kv.Close()
	gateway := storage.NewGateway(kv, log)

	br, err := app.OpenBrowser(ctx, cfg, log)
	if err != nil {
		return errors.Wrap(err, "failed to init browser")
	}
	defer br.Close()

	hub := server.NewHub(log)
	notifier, bot, err := app.Notifiers(cfg.Telegram, log, hub)
	if err != nil {
		return err
	}

	ctrl := app.Controller(br.Page, gateway, notifier, cfg.Automation, log)
	srv := server.New(messaging.NewRouter(ctrl, log), gateway, br.Page.URL, hub, log)

	sched := schedule.NewScheduler(ctrl, log)
	if err := sched.Start(cfg.Automation.Schedule); err != nil {
		return err
	}

	bg, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	if bot != nil {
		go bot.Run(bg)
	}
	go func() {
		ctrl.ExtractAfter(bg, cfg.Automation.InitialExtractDelay)
		ctrl.Observe(bg, cfg.Automation.ObserveInterval)
	}()

	// Stop on a signal, or when the listener fails.
	lifetime, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe(":" + cfg.Server.Port)
		cancel()
	}()

	shutdown.Graceful(lifetime, []os.Signal{syscall.SIGINT, syscall.SIGTERM}, shutdown.StoppableFunc(func(ctx context.Context) error {
		stopBackground()
		return errors.CombineErrors(
			errors.CombineErrors(sched.Shutdown(ctx), ctrl.Close(ctx)),
			srv.Shutdown(ctx),
		)
	}), cfg.Server.ShutdownTimeout, log)

	return <-serveErr
}
