package commands

import (
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"strongbox/pkg/identity"
	"strongbox/pkg/metrics"
	"strongbox/pkg/server"
)

// serve: run the command channel server. The identity's key pair and
// certificate, and one .pub file per authorized client, must exist in the
// key directory.
func serveCmd() *cobra.Command {
	var (
		addr    string
		name    string
		dataDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the command channel server",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := identity.LoadSigningKey(keysDir, name)
			if err != nil {
				return err
			}
			cert, err := identity.LoadCertificate(keysDir, name)
			if err != nil {
				return err
			}
			local, err := identity.NewLocal(name, key, cert)
			if err != nil {
				return err
			}
			registry, err := identity.LoadRegistry(keysDir)
			if err != nil {
				return err
			}

			cfg := server.DefaultConfig()
			cfg.Identity = local
			cfg.Registry = registry
			cfg.Handler = server.NewDirHandler(dataDir)
			cfg.Observer = metrics.NewChannelObserver(metrics.Global(), metrics.GetLogger())

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = srv.Serve(ctx, ln)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":7642", "listen address")
	cmd.Flags().StringVar(&name, "name", "server", "server identity name")
	cmd.Flags().StringVar(&dataDir, "data", "data", "root directory for per-user files")
	return cmd
}
