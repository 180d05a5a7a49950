package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	backend "qbackend/internal/backend"
	config "qbackend/internal/config"
	logger "qbackend/internal/logger"
	provider "qbackend/internal/provider"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toolName = "qbackend"
	version  = "0.3.0"
)

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

type cliOptions struct {
	ConfigFile   string
	Provider     string
	MetadataFile string
	JSON         bool
}

var exitFn = os.Exit

// Run is the program entrypoint for cmd/qbackend/main.go.
func Run() {
	exitFn(run())
}

func run() int {
	cmd := newRootCommand()
	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           toolName,
		Short:         "Inspect and resolve quantum backend names",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	addRootFlags(cmd.PersistentFlags(), opts)
	cmd.AddCommand(
		newListCommand(opts),
		newResolveCommand(opts),
		newTablesCommand(opts),
		newCleanupCommand(),
		newVersionCommand(),
	)

	return cmd
}

func addRootFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.StringVar(&opts.ConfigFile, "config", "", "Config file path (default: $HOME/.qbackend/config.*)")
	fs.StringVar(&opts.Provider, "provider", "", "Provider to query (local, remote)")
	fs.StringVar(&opts.MetadataFile, "metadata-file", "", "Account device metadata file (remote provider)")
	fs.BoolVar(&opts.JSON, "json", false, "Emit JSON instead of text")
}

// runWithLogger installs a process logger around fn and routes backend
// availability-probe warnings into it.
func runWithLogger(fn func() int) int {
	log, err := logger.NewLogger()
	if err == nil {
		logger.SetLogger(log)
		backend.SetLogFuncs(logger.LogWarn, logger.LogError)
		defer func() {
			backend.SetLogFuncs(nil, nil)
			_ = logger.CloseLogger()
		}()
	}
	return fn()
}

// loadConfig merges flags over viper config over environment.
func loadConfig(opts *cliOptions) (*config.Config, error) {
	v, err := config.NewViper(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg := config.FromViper(v)
	if p := strings.TrimSpace(opts.Provider); p != "" {
		cfg.Provider = p
	}
	if f := strings.TrimSpace(opts.MetadataFile); f != "" {
		cfg.MetadataFile = f
	}
	applyNativeOverrides(cfg)
	return cfg, nil
}

// applyNativeOverrides exports config-file native-simulator settings as
// the environment variables the availability probe reads, without
// clobbering values the user already set.
func applyNativeOverrides(cfg *config.Config) {
	if cfg.NativeSimPath != "" && os.Getenv("QBACKEND_NATIVE_SIM_PATH") == "" {
		_ = os.Setenv("QBACKEND_NATIVE_SIM_PATH", cfg.NativeSimPath)
	}
	if cfg.NativeMinMemoryMB > 0 && os.Getenv("QBACKEND_NATIVE_MIN_MEMORY_MB") == "" {
		_ = os.Setenv("QBACKEND_NATIVE_MIN_MEMORY_MB", fmt.Sprintf("%d", cfg.NativeMinMemoryMB))
	}
}

// defaultBuildProvider constructs the provider named by cfg.Provider.
func defaultBuildProvider(cfg *config.Config) (provider.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "local":
		return provider.NewLocalProvider(), nil
	case "remote":
		if cfg.MetadataFile == "" {
			return nil, fmt.Errorf("remote provider requires --metadata-file or QBACKEND_METADATA_FILE")
		}
		p := provider.NewRemoteProvider(provider.FileMetadataSource{Path: cfg.MetadataFile})
		if err := p.UseAccount(); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (expected local or remote)", cfg.Provider)
	}
}

var buildProviderFn = defaultBuildProvider

func openRegistry(opts *cliOptions) (*backend.Registry, *config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	p, err := buildProviderFn(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.LogInfo(fmt.Sprintf("provider %s ready, %d backends registered", p.ID(), len(p.Registry().List())))
	return p.Registry(), cfg, nil
}
