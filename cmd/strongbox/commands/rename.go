package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rename <old> <new>: rename a remote file over an authenticated session.
func renameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a remote file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			status, err := c.Rename(args[0], args[1])
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
