package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"strongbox/pkg/identity"
)

// cert <name>: issue a certificate binding <name> to its public key, signed
// by the issuer's key. Both key pairs must already exist in the key dir.
func certCmd() *cobra.Command {
	var issuer string

	cmd := &cobra.Command{
		Use:   "cert <name>",
		Short: "Issue a certificate for an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			pub, err := identity.LoadVerifyKey(keysDir, name)
			if err != nil {
				return err
			}
			issuerKey, err := identity.LoadSigningKey(keysDir, issuer)
			if err != nil {
				return err
			}

			cert, err := identity.IssueCertificate(name, pub, issuerKey)
			if err != nil {
				return err
			}
			if err := identity.SaveCertificate(keysDir, cert); err != nil {
				return err
			}

			fmt.Printf("wrote %s.crt to %s (issuer %s)\n", name, keysDir, issuer)
			return nil
		},
	}

	cmd.Flags().StringVar(&issuer, "issuer", "", "issuer identity whose key signs the certificate")
	_ = cmd.MarkFlagRequired("issuer")
	return cmd
}
