package coordinator

// ReportGate allows exactly one statically configured administrator to read
// reports. An empty administrator ID denies everyone.
type ReportGate struct {
	adminID string
}

// NewReportGate creates a gate for adminID.
func NewReportGate(adminID string) ReportGate {
	return ReportGate{adminID: adminID}
}

// Allow reports whether userID may read reports.
func (g ReportGate) Allow(userID string) bool {
	return g.adminID != "" && userID == g.adminID
}
