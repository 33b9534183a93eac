package cli

import (
	"github.com/spf13/cobra"

	"github.com/smile-share/engage/internal/daemon"
)

func init() {
	grantCmd.Flags().Int64Var(&grantAmount, "amount", 0, "Points to grant")
	grantCmd.Flags().StringVar(&grantReason, "reason", "", "Reason recorded in the audit trail")
	rootCmd.AddCommand(grantCmd)
}

var (
	grantAmount int64
	grantReason string
)

var grantCmd = &cobra.Command{
	Use:   "grant <user-id>",
	Short: "Manually grant points to a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runGrant,
}

func runGrant(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Engine.Grant(args[0], grantAmount, grantReason)
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}
