package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mdmdirector/devicesweep/audit"
	"github.com/mdmdirector/devicesweep/db"
	"github.com/mdmdirector/devicesweep/director"
	"github.com/mdmdirector/devicesweep/log"
	"github.com/mdmdirector/devicesweep/mdm"
	"github.com/mdmdirector/devicesweep/prometheus"
	"github.com/mdmdirector/devicesweep/prompt"
	"github.com/mdmdirector/devicesweep/selection"
	"github.com/mdmdirector/devicesweep/settings"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/mdmdirector/devicesweep/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	exitOK       = 0
	exitSetup    = 1
	exitFailures = 2

	defaultLogDir = "./logs"
)

// options are the flags shared by both flows
type options struct {
	settingsPath    string
	logLevel        string
	jsonLogs        bool
	logDir          string
	auditDB         string
	metricsTextfile string

	tenantID     string
	clientID     string
	clientSecret string
	accessToken  string
	graphURL     string
	timeout      time.Duration

	dryRun     bool
	textSelect bool
	action     string
	ask        bool
}

// config is options merged with the settings file
type config struct {
	options
	graph mdm.Config
}

func main() {
	os.Exit(execute())
}

func execute() int {
	opts := &options{}
	code := exitOK

	root := &cobra.Command{
		Use:           "devicesweep",
		Short:         "Review and remediate stale Intune devices and Entra groups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addCommonFlags(root, opts)
	root.AddCommand(newDevicesCmd(opts, &code), newGroupsCmd(opts, &code))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Errorf("%v", err)
		return exitSetup
	}
	return code
}

func addCommonFlags(cmd *cobra.Command, opts *options) {
	f := cmd.PersistentFlags()
	f.StringVar(&opts.settingsPath, "settings", utils.EnvString("SETTINGS", ""), "Path to settings.json (default ./settings.json when present)")
	f.StringVar(&opts.logLevel, "log-level", utils.EnvString("LOG_LEVEL", "info"), "Log level (trace, debug, info, warn, error)")
	f.BoolVar(&opts.jsonLogs, "log-json", utils.EnvBool("LOG_JSON", false), "Log as JSON")
	f.StringVar(&opts.logDir, "log-dir", utils.EnvString("LOG_DIR", ""), "Directory for audit CSV files (default ./logs)")
	f.StringVar(&opts.auditDB, "audit-db", utils.EnvString("AUDIT_DB", ""), "Postgres DSN to also record results in")
	f.StringVar(&opts.metricsTextfile, "metrics-textfile", utils.EnvString("METRICS_TEXTFILE", ""), "Write run metrics to this node exporter textfile")

	f.StringVar(&opts.tenantID, "tenant-id", utils.EnvString("TENANT_ID", ""), "Entra tenant id")
	f.StringVar(&opts.clientID, "client-id", utils.EnvString("CLIENT_ID", ""), "App registration client id")
	f.StringVar(&opts.clientSecret, "client-secret", utils.EnvString("CLIENT_SECRET", ""), "App registration client secret")
	f.StringVar(&opts.accessToken, "access-token", utils.EnvString("ACCESS_TOKEN", ""), "Pre-issued Graph bearer token")
	f.StringVar(&opts.graphURL, "graph-url", utils.EnvString("GRAPH_URL", ""), "Graph endpoint (default "+mdm.DefaultGraphURL+")")
	f.DurationVar(&opts.timeout, "timeout", 60*time.Second, "Per request timeout")

	f.BoolVar(&opts.dryRun, "dry-run", utils.EnvBool("DRY_RUN", false), "Report what would happen without changing anything")
	f.BoolVar(&opts.textSelect, "text-select", utils.EnvBool("TEXT_SELECT", false), "Use the numbered text selection instead of the grid")
	f.StringVar(&opts.action, "action", "", "Preselect the action (delete, retire, wipe, rename) and skip the choice prompt")
	f.BoolVar(&opts.ask, "ask", false, "Prompt for the filter criteria")
}

// loadConfig merges flags over the settings file and sets up logging
func loadConfig(opts *options) (*config, error) {
	if err := log.SetLevel(opts.logLevel); err != nil {
		return nil, err
	}
	if opts.jsonLogs {
		log.SetJSON()
	}

	s, err := settings.LoadSettings(opts.settingsPath)
	if err != nil {
		return nil, err
	}

	cfg := &config{options: *opts}
	cfg.logDir = utils.FirstNonEmpty(opts.logDir, s.LogDir, defaultLogDir)
	cfg.auditDB = utils.FirstNonEmpty(opts.auditDB, s.AuditDatabase)
	cfg.metricsTextfile = utils.FirstNonEmpty(opts.metricsTextfile, s.MetricsTextfile)
	cfg.tenantID = utils.FirstNonEmpty(opts.tenantID, s.TenantID)

	cfg.graph = mdm.Config{
		GraphURL:     utils.FirstNonEmpty(opts.graphURL, s.GraphURL, mdm.DefaultGraphURL),
		TenantID:     cfg.tenantID,
		ClientID:     utils.FirstNonEmpty(opts.clientID, s.ClientID),
		ClientSecret: utils.FirstNonEmpty(opts.clientSecret, s.ClientSecret),
		AccessToken:  utils.FirstNonEmpty(opts.accessToken, s.AccessToken),
		Timeout:      opts.timeout,
	}
	return cfg, nil
}

// parseAction resolves --action; empty means ask
func parseAction(s string) (types.ActionKind, error) {
	if s == "" {
		return types.ActionNone, nil
	}
	kind, ok := types.ParseAction(s)
	if !ok {
		return types.ActionNone, fmt.Errorf("unknown action %q", s)
	}
	return kind, nil
}

// runFlow connects, builds the pipeline and runs it. Errors returned here
// happened before any entity was touched or while writing the audit log.
func runFlow(ctx context.Context, cfg *config, build func(*director.Pipeline, *prompt.Prompter) error) (*director.Report, error) {
	preset, err := parseAction(cfg.action)
	if err != nil {
		return nil, err
	}

	client, err := mdm.NewGraphClient(ctx, cfg.graph)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(); err != nil {
		return nil, err
	}

	p := prompt.New(os.Stdin, os.Stdout)
	session := director.NewSession(client, cfg.tenantID, cfg.dryRun, nil)
	log.Infof("Run %v started against tenant %v (dry run: %v)", session.RunID, cfg.tenantID, cfg.dryRun)

	pipeline := &director.Pipeline{
		Session:         session,
		Surface:         selection.Probe(os.Stdin, os.Stdout, cfg.textSelect, p),
		Prompter:        p,
		Preset:          preset,
		Audit:           &audit.Writer{Dir: cfg.logDir},
		Metrics:         prometheus.NewMetrics(),
		MetricsTextfile: cfg.metricsTextfile,
	}
	if err := build(pipeline, p); err != nil {
		return nil, err
	}

	if cfg.auditDB != "" {
		if sink := openSink(cfg.auditDB); sink != nil {
			pipeline.Sink = sink
			defer db.Close()
		}
	}

	return pipeline.Run(ctx)
}

// openSink failures leave the run without a database sink
func openSink(dsn string) audit.Sink {
	if err := db.Open(dsn); err != nil {
		log.Errorf("Audit database unavailable: %v", err)
		return nil
	}
	if err := db.Migrate(); err != nil {
		log.Errorf("Audit database unavailable: %v", err)
		return nil
	}
	return &audit.DBSink{DB: db.DB}
}

func printReport(report *director.Report) int {
	if report == nil {
		return exitOK
	}
	fmt.Printf("\nRun %v: %v\n", report.RunID, report.Stage)
	fmt.Printf("  fetched %d, candidates %d, guard excluded %d, selected %d\n",
		report.Fetched, report.Candidates, report.GuardExcluded, report.Selected)
	if !report.Cutoff.IsZero() {
		fmt.Printf("  check-in cutoff %v\n", report.Cutoff.Format(time.RFC3339))
	}
	if len(report.Results) > 0 {
		fmt.Printf("  %d processed, %d failed\n", len(report.Results), report.Failures())
	}
	if report.AuditFile != "" {
		fmt.Printf("  audit log: %v\n", filepath.Clean(report.AuditFile))
	}
	if report.ExcludedFile != "" {
		fmt.Printf("  guard excluded: %v\n", filepath.Clean(report.ExcludedFile))
	}
	if report.Failures() > 0 {
		return exitFailures
	}
	return exitOK
}

// finish turns a run outcome into the command result
func finish(report *director.Report, err error, code *int) error {
	if errors.Is(err, director.ErrEmptyInventory) {
		return errors.New("the tenant returned no entities, check the app permissions")
	}
	if err != nil {
		printReport(report)
		return err
	}
	*code = printReport(report)
	return nil
}
