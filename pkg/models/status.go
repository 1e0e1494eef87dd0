package models

// AuditStatus represents the stored outcome of auditing a URL
type AuditStatus string

const (
	AuditStatusUnset    AuditStatus = ""          // Zero value = unset/unknown
	AuditStatusPass     AuditStatus = "pass"      // 200 response, no error findings
	AuditStatusWarn     AuditStatus = "warn"      // 200 response, warnings only
	AuditStatusFail     AuditStatus = "fail"      // Non-200, transport failure, or error findings
	AuditStatusNotFound AuditStatus = "not_found" // URL not in database
	AuditStatusDBError  AuditStatus = "db_error"  // Database error occurred
)

// String implements fmt.Stringer for logging
func (s AuditStatus) String() string {
	if s == "" {
		return "unset"
	}
	return string(s)
}

// IsValid returns true if the status is a known operational value
func (s AuditStatus) IsValid() bool {
	switch s {
	case AuditStatusPass, AuditStatusWarn, AuditStatusFail:
		return true
	}
	return false
}

// Outcome derives the stored status from an analysis record
func (a *URLAnalysis) Outcome() AuditStatus {
	switch {
	case !a.Succeeded() || len(a.Errors) > 0:
		return AuditStatusFail
	case len(a.Warnings) > 0:
		return AuditStatusWarn
	default:
		return AuditStatusPass
	}
}
