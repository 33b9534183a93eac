package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smile-share/engage/internal/daemon"
	"github.com/smile-share/engage/internal/domain"
)

func init() {
	donationCmd.Flags().Int64Var(&donationAmount, "amount", 0, "Donation amount")
	donationCmd.Flags().StringVar(&recordNGO, "ngo", "", "NGO receiving the donation")
	donationCmd.Flags().StringVar(&donationCampaign, "campaign", "", "Campaign id")
	activityCmd.Flags().StringVar(&activityID, "activity", "", "Activity id")
	activityCmd.Flags().StringVar(&recordNGO, "ngo", "", "NGO hosting the activity")

	recordCmd.AddCommand(donationCmd)
	recordCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(recordCmd)
}

var (
	donationAmount   int64
	donationCampaign string
	activityID       string
	recordNGO        string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a user action (donation, activity join)",
}

var donationCmd = &cobra.Command{
	Use:   "donation <user-id>",
	Short: "Record a completed donation",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordDonation,
}

var activityCmd = &cobra.Command{
	Use:   "activity <user-id>",
	Short: "Record an activity join",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordActivity,
}

func runRecordDonation(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Engine.RecordDonation(args[0], domain.DonationDelta{
		Amount:     donationAmount,
		CampaignID: donationCampaign,
		NGOID:      recordNGO,
	})
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func runRecordActivity(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Engine.RecordActivityJoin(args[0], domain.ActivityDelta{
		ActivityID: activityID,
		NGOID:      recordNGO,
	})
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func printResult(res domain.Result) {
	fmt.Printf("+%d points (total %d, level %d %s)\n",
		res.PointsAwarded, res.Total, res.Level.Level, res.Level.Name)
	for _, b := range res.NewBadges {
		fmt.Printf("  %s  %s — %s (+%d)\n", b.Icon, b.Name, b.Description, b.Points)
	}
}
