package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// delete <name>: delete a remote file over an authenticated session.
func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a remote file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			status, err := c.Delete(args[0])
			if err != nil {
				return err
			}
			fmt.Println(status)

			_, err = c.Logout()
			return err
		},
	}

	addClientFlags(cmd)
	return cmd
}
