package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smile-share/engage/internal/daemon"
)

func init() {
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary <user-id>",
	Short: "Show a user's points, level, and badges",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	s, err := d.Engine.Summary(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("User:     %s\n", s.UserID)
	fmt.Printf("Points:   %d\n", s.Points)
	fmt.Printf("Level:    %d (%s)\n", s.Level.Level, s.Level.Name)
	if s.NextLevel != nil {
		fmt.Printf("Next:     %s at %d points (%d%%)\n",
			s.NextLevel.Name, s.NextLevel.PointsRequired, s.ProgressPercent)
	} else {
		fmt.Println("Next:     max level reached")
	}

	if len(s.Badges) == 0 {
		fmt.Println("Badges:   none yet")
		return nil
	}

	fmt.Println("Badges:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tPOINTS\tAWARDED")
	for _, b := range s.Badges {
		fmt.Fprintf(w, "  %s\t%s\t%d\t%s\n",
			b.ID, b.Name, b.Points, b.AwardedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
