package commands

import (
	"context"

	"github.com/spf13/cobra"

	"strongbox/pkg/channel"
	"strongbox/pkg/client"
	"strongbox/pkg/identity"
)

// Flags shared by the client subcommands.
var (
	addr       string
	user       string
	serverName string
	issuerName string
)

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7642", "server address")
	cmd.Flags().StringVar(&user, "user", "", "client identity name")
	cmd.Flags().StringVar(&serverName, "server", "server", "server identity name")
	cmd.Flags().StringVar(&issuerName, "issuer", "", "verify the server certificate against this issuer instead of pinning")
	_ = cmd.MarkFlagRequired("user")
}

// dial loads the client identity and server trust material from the key
// directory and establishes an authenticated session.
//
// By default the server's key is pinned from <server>.pub; with --issuer the
// certificate the server presents is verified against <issuer>.pub instead.
func dial(ctx context.Context) (*client.Client, error) {
	key, err := identity.LoadSigningKey(keysDir, user)
	if err != nil {
		return nil, err
	}
	local, err := identity.NewLocal(user, key, nil)
	if err != nil {
		return nil, err
	}

	cfg := channel.ClientConfig{
		Identity:   local,
		ServerName: serverName,
	}
	if issuerName != "" {
		cfg.IssuerKey, err = identity.LoadVerifyKey(keysDir, issuerName)
	} else {
		cfg.ServerKey, err = identity.LoadVerifyKey(keysDir, serverName)
	}
	if err != nil {
		return nil, err
	}

	return client.Dial(ctx, addr, cfg)
}
