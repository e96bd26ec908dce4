package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"go-linkedin-extractor/internal/config"
	"go-linkedin-extractor/internal/filter"
	"go-linkedin-extractor/internal/popup"
)

var (
	configPath string
	serverURL  string
	exportDir  string

	criteria    filter.Criteria
	listMissing bool

	ctrl *popup.Controller
)

var rootCmd = &cobra.Command{
	Use:   "extractor-popup",
	Short: "📋 Control the LinkedIn job extractor and export its records",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if serverURL == "" {
			serverURL = cfg.Popup.Server
		}
		if exportDir == "" {
			exportDir = cfg.Popup.ExportDir
		}
		ctrl = popup.NewController(popup.NewClient(serverURL), os.Stdout, exportDir)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Extract the current page and show the stored jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctrl.Load(cmd.Context())
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show stored jobs, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctrl.List(cmd.Context(), criteria)
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start paginated automation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctrl.Start(cmd.Context())
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop automation after the page in progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctrl.Stop(cmd.Context())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show automation status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctrl.Status(cmd.Context())
	},
}

var detailsCmd = &cobra.Command{
	Use:   "details <job-id>",
	Short: "Show stored details for a job as markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctrl.Details(cmd.Context(), args[0])
	},
}

var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "Count stored jobs that have no details yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctrl.Missing(cmd.Context(), listMissing)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write linkedin_jobs.json and linkedin_job_details.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ctrl.Export(cmd.Context())
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print automation events as they happen",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return ctrl.Watch(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "extractor server url (default: popup.server / EXTRACTOR_SERVER)")
	rootCmd.PersistentFlags().StringVar(&exportDir, "dir", "", "export directory (default: popup.export_dir)")

	listCmd.Flags().StringVarP(&criteria.Query, "query", "q", "", "words that must appear in title, company, location or info")
	listCmd.Flags().StringVar(&criteria.Company, "company", "", "company contains")
	listCmd.Flags().StringVar(&criteria.Location, "location", "", "location contains")
	listCmd.Flags().BoolVar(&criteria.Promoted, "promoted", false, "only promoted cards")

	missingCmd.Flags().BoolVar(&listMissing, "list", false, "list the jobs without details")

	rootCmd.AddCommand(loadCmd, listCmd, startCmd, stopCmd, statusCmd, detailsCmd, missingCmd, exportCmd, watchCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
