package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nillion/nilql-go/internal/config"
	"github.com/nillion/nilql-go/pkg/nilql"
	"github.com/nillion/nilql-go/pkg/nilql/logging"
)

// app holds the state shared by every sub-command.
type app struct {
	configPath string
	logLevel   string
	logJSON    bool
	inPath     string
	outPath    string

	cfg    *config.Config
	zap    *zap.Logger
	logger logging.Logger
}

// newRootCmd builds the command tree. A non-nil logger replaces the one
// built from flags and configuration.
func newRootCmd(logger *zap.Logger) *cobra.Command {
	a := &app{zap: logger}

	root := &cobra.Command{
		Use:           "nilql",
		Short:         "Encrypt and secret-share values for nilql clusters",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.zap != nil {
				_ = a.zap.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "cluster configuration file (YAML or JSON)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&a.logJSON, "log-json", false, "log as JSON")
	flags.StringVar(&a.inPath, "in", "", "read input from file instead of stdin")
	flags.StringVar(&a.outPath, "out", "", "write output to file instead of stdout")

	root.AddCommand(
		a.keygenCmd(),
		a.pubkeyCmd(),
		a.encryptCmd(),
		a.decryptCmd(),
		a.allotCmd(),
		a.unifyCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if a.logJSON {
		cfg.LogFormat = config.FormatJSON
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	if a.zap == nil {
		z, err := buildZap(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.zap = z
	}
	a.logger = logging.NewZap(a.zap).With("command", cmd.Name())
	return nil
}

func buildZap(cfg *config.Config) (*zap.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if cfg.LogFormat == config.FormatConsole {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// cluster returns the configured cluster, or n anonymous nodes when n > 0.
func (a *app) cluster(n int) nilql.Cluster {
	if n > 0 {
		return nilql.NewCluster(n)
	}
	return a.cfg.Cluster
}

func (a *app) readInput(cmd *cobra.Command) ([]byte, error) {
	if a.inPath == "" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return readFile(a.inPath)
}

func (a *app) writeOutput(cmd *cobra.Command, data []byte) error {
	data = append(bytes.TrimRight(data, "\n"), '\n')
	if a.outPath == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	path, err := config.SecurePath(a.outPath)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func readFile(path string) ([]byte, error) {
	abs, err := config.SecurePath(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs) // #nosec G304 -- abs validated by SecurePath
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the library version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.writeOutput(cmd, []byte(nilql.BuildVersion()))
		},
	}
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
