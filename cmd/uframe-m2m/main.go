package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kerfoot/uframe-m2m/pkg/config"
	"github.com/kerfoot/uframe-m2m/pkg/m2m"
)

var (
	baseURLFlag = &cli.StringFlag{
		Name:    "baseurl",
		Aliases: []string{"b"},
		Usage:   "UFrame server URL",
		Sources: cli.EnvVars("UFRAME_BASE_URL"),
	}
	timeoutFlag = &cli.DurationFlag{
		Name:    "timeout",
		Aliases: []string{"t"},
		Usage:   "HTTP client timeout (e.g. 30s, 2m)",
		Value:   120 * time.Second,
	}
	logLevelFlag = &cli.StringFlag{
		Name:    "loglevel",
		Aliases: []string{"l"},
		Usage:   "log level: debug, info, warning, error or critical",
		Value:   "warning",
	}
	directFlag = &cli.BoolFlag{
		Name:    "direct",
		Aliases: []string{"d"},
		Usage:   "address the UFrame service ports directly instead of the m2m gateway",
	}
	configFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "YAML configuration file",
		Sources: cli.EnvVars("UFRAME_M2M_CONFIG"),
	}
	csvFlag = &cli.BoolFlag{
		Name:  "csv",
		Usage: "write CSV instead of JSON",
	}
	apiUsernameFlag = &cli.StringFlag{
		Name:    "api-username",
		Usage:   "m2m API username",
		Sources: cli.EnvVars("UFRAME_API_USERNAME"),
	}
	apiTokenFlag = &cli.StringFlag{
		Name:    "api-token",
		Usage:   "m2m API token",
		Sources: cli.EnvVars("UFRAME_API_TOKEN"),
	}
)

func main() {
	cmd := &cli.Command{
		Name:  "uframe-m2m",
		Usage: "Query UFrame sensor inventories and build data requests",
		Flags: []cli.Flag{
			baseURLFlag, timeoutFlag, logLevelFlag, directFlag,
			configFlag, csvFlag, apiUsernameFlag, apiTokenFlag,
		},
		Commands: []*cli.Command{
			newInstrumentsCommand(),
			newSubsitesCommand(),
			newStreamsCommand(),
			newParametersCommand(),
			newMetadataCommand(),
			newDeploymentsCommand(),
			newStatusCommand(),
			newRequestCommand(),
			newDeploymentRequestCommand(),
			newFindCommand(),
			newSendCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the optional YAML file and the environment,
// then lets command-line flags win.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String(configFlag.Name))
	if err != nil {
		return nil, err
	}

	if v := cmd.String(baseURLFlag.Name); v != "" {
		cfg.BaseURL = v
	}
	if cmd.IsSet(timeoutFlag.Name) {
		cfg.Timeout = int(cmd.Duration(timeoutFlag.Name).Seconds())
	}
	if cmd.IsSet(logLevelFlag.Name) {
		cfg.LogLevel = cmd.String(logLevelFlag.Name)
	}
	if cmd.Bool(directFlag.Name) {
		cfg.Direct = true
	}
	if v := cmd.String(apiUsernameFlag.Name); v != "" {
		cfg.APIUsername = v
	}
	if v := cmd.String(apiTokenFlag.Name); v != "" {
		cfg.APIToken = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildLogger builds a development-config logger writing to stderr at the
// requested level.
func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func parseLogLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warning", "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "critical", "fatal":
		return zapcore.FatalLevel, nil
	}
	return 0, fmt.Errorf("invalid log level %q", s)
}

// app bundles what every server-facing command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *m2m.Client
}

// newApp builds the shared m2m client from the merged configuration.
func newApp(cmd *cli.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("no base URL: set --baseurl, UFRAME_BASE_URL or base_url in the config file")
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := []m2m.Option{
		m2m.WithTimeout(cfg.TimeoutDuration()),
		m2m.WithLogger(logger),
	}
	if cfg.Direct {
		opts = append(opts, m2m.WithDirect())
	}
	if cfg.APIUsername != "" {
		opts = append(opts, m2m.WithCredentials(cfg.APIUsername, cfg.APIToken))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, m2m.WithRateLimit(cfg.RateLimit))
	}

	client, err := m2m.NewClient(cfg.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, client: client}, nil
}
