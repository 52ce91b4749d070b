// Package cmd defines the command-line interface for sitpulse.
package cmd

import (
	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/huangsam/sitpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(growthCmd)
	rootCmd.AddCommand(sittersCmd)
	rootCmd.AddCommand(ownersCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("data-dir", contract.DefaultDataDir, "Directory holding the input tables")
	rootCmd.PersistentFlags().String("memberships", "", "Active membership counts table (default <data-dir>/"+contract.MembershipsFile+")")
	rootCmd.PersistentFlags().String("applications", "", "Applications table (default <data-dir>/"+contract.ApplicationsFile+")")
	rootCmd.PersistentFlags().String("sitters", "", "Sitters table (default <data-dir>/"+contract.SittersFile+")")
	rootCmd.PersistentFlags().String("assignments", "", "Assignments table (default <data-dir>/"+contract.AssignmentsFile+")")
	rootCmd.PersistentFlags().String("owners", "", "Owners table (default <data-dir>/"+contract.OwnersFile+")")
	rootCmd.PersistentFlags().String("verifications", "", "Optional verifications table (default <data-dir>/"+contract.VerificationsFile+")")
	rootCmd.PersistentFlags().String("report-start", contract.DefaultReportStart, "First day of the reporting window")
	rootCmd.PersistentFlags().String("report-end", contract.DefaultReportEnd, "Last day of the reporting window")
	rootCmd.PersistentFlags().StringP("country", "c", string(country.All), "Market filter: All, a top market, or ROW")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultServeAddr, "Address to listen on")
	serveCmd.Flags().String("serve-user", "", "Basic auth user for the API")
	serveCmd.Flags().String("serve-password", "", "Basic auth password for the API")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
