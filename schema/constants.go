package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// ReportKind names one of the computed reports.
	ReportKind string

	// MembershipType is the membership_type column of the num-active table.
	MembershipType string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All reports supported.
const (
	GrowthReport           ReportKind = "growth"
	SitterOnboardingReport ReportKind = "sitters"
	OwnerOnboardingReport  ReportKind = "owners"
	NetworkHealthReport    ReportKind = "health"
)

// Membership types present in the num-active extract.
const (
	HomeownerMembership   MembershipType = "homeowner"
	HousesitterMembership MembershipType = "housesitter"
	CombinedMembership    MembershipType = "combined"
)

// AllReports lists every report in display order.
var AllReports = []ReportKind{GrowthReport, SitterOnboardingReport, OwnerOnboardingReport, NetworkHealthReport}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid cache backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidReports lists all valid report kinds.
var ValidReports = map[ReportKind]struct{}{
	GrowthReport:           {},
	SitterOnboardingReport: {},
	OwnerOnboardingReport:  {},
	NetworkHealthReport:    {},
}

// reportTitles are the display titles of each report.
var reportTitles = map[ReportKind]string{
	GrowthReport:           "Membership Growth",
	SitterOnboardingReport: "New Sitter Onboarding",
	OwnerOnboardingReport:  "New Owner Onboarding",
	NetworkHealthReport:    "Network Health (rolling 12 months)",
}

// Title returns the display title of the report.
func (k ReportKind) Title() string {
	if t, ok := reportTitles[k]; ok {
		return t
	}
	return string(k)
}
