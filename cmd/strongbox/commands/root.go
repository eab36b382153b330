package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"strongbox/pkg/metrics"
)

var (
	keysDir  string
	logLevel string
	logJSON  bool
	trace    bool
)

func Execute() error {
	root := &cobra.Command{
		Use:   "strongbox",
		Short: "Mutually authenticated encrypted command channel",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if keysDir == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				keysDir = filepath.Join(dir, ".strongbox")
			}
			if err := os.MkdirAll(keysDir, 0o700); err != nil {
				return err
			}

			opts := []metrics.LoggerOption{
				metrics.WithLevel(metrics.ParseLevel(logLevel)),
			}
			if logJSON {
				opts = append(opts, metrics.WithFormat(metrics.FormatJSON))
			}
			metrics.SetLogger(metrics.NewLogger(opts...))

			if trace {
				metrics.SetTracer(metrics.NewOTelTracer("strongbox"))
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&keysDir, "keys", "", "key directory (default ~/.strongbox)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error, silent)")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
	root.PersistentFlags().BoolVar(&trace, "trace", false, "emit OpenTelemetry spans via the global provider")

	root.AddCommand(serveCmd(), renameCmd(), deleteCmd(), keygenCmd(), certCmd())
	return root.Execute()
}
