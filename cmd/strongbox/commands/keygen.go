package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"strongbox/pkg/crypto"
	"strongbox/pkg/identity"
)

// keygen <name>: generate a long-term Ed25519 key pair.
func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen <name>",
		Short: "Generate a long-term key pair for an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			pub, priv, err := crypto.GenerateSigningKey()
			if err != nil {
				return err
			}
			if err := identity.SaveKeyPair(keysDir, name, pub, priv); err != nil {
				return err
			}

			fmt.Printf("wrote %s.key and %s.pub to %s\n", name, name, keysDir)
			return nil
		},
	}
}
