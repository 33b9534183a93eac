package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smile-share/engage/internal/daemon"
)

func init() {
	topCmd.Flags().IntVar(&topLimit, "limit", 10, "How many users to show")
	rootCmd.AddCommand(topCmd)
}

var topLimit int

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the points leaderboard",
	RunE:  runTop,
}

func runTop(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	board, err := d.Engine.Leaderboard(topLimit)
	if err != nil {
		return err
	}

	if len(board) == 0 {
		fmt.Println("No users yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tUSER\tPOINTS\tBADGES")
	for _, e := range board {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", e.Rank, e.UserID, e.Points, e.Badges)
	}
	return w.Flush()
}
