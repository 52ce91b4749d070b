package cmd

import (
	"github.com/huangsam/sitpulse/core"
	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/spf13/cobra"
)

// reportRun adapts a report executor to a cobra Run function.
func reportRun(name string, exec core.ExecutorFunc) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		if err := exec(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run "+name+" report", err)
		}
	}
}

// growthCmd reports active members over time.
var growthCmd = &cobra.Command{
	Use:   "growth",
	Short: "Show active homeowners, housesitters and their ratio by month.",
	Long: `Report the number of active members per role for every month on record,
along with the housesitter to homeowner ratio and the latest counts.

Examples:
  # Whole network
  sitpulse growth

  # One market, exported for a spreadsheet
  sitpulse growth --country "United Kingdom" --output csv --output-file growth.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     reportRun("growth", core.ExecuteGrowth),
}

// sittersCmd reports the onboarding of new sitters.
var sittersCmd = &cobra.Command{
	Use:   "sitters",
	Short: "Show how new sitters fare in their first 90 days.",
	Long: `Report, for each month of the reporting window, the sitters who started that month:
how many applied, how many got a confirmed sit within 90 days, and how many stayed inactive.

Examples:
  sitpulse sitters --report-start 2016-01-01 --report-end 2017-11-30
  sitpulse sitters --country ROW --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     reportRun("sitter onboarding", core.ExecuteSitterOnboarding),
}

// ownersCmd reports the onboarding of new owners.
var ownersCmd = &cobra.Command{
	Use:   "owners",
	Short: "Show how new owners fare in their first 90 days.",
	Long: `Report, for each month of the reporting window, the owners who started that month:
how many posted an assignment, how many applications those drew, and how many were filled.

Examples:
  sitpulse owners
  sitpulse owners --country Australia --precision 3`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     reportRun("owner onboarding", core.ExecuteOwnerOnboarding),
}

// healthCmd reports rolling network health.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show rolling 12-month network health ratios.",
	Long: `Report, at every month end of the reporting window, the trailing 12 months of
applications per assignment, sitters per owner and the success rates on both sides.

Examples:
  sitpulse health
  sitpulse health --output parquet --output-file health.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     reportRun("network health", core.ExecuteNetworkHealth),
}
