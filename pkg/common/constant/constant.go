package constant

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	ReportKeyPrefix = "report/"
	// LatestReportKey holds the id of the most recent report.
	LatestReportKey = "latest"

	// Subject suffix appended to nats.subject_prefix for published reports.
	ReportSubject = "report"
)
