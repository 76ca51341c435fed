package constants

// JobStatus is the canonical status for rows in extract_log.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusOCROK   JobStatus = "OCR_OK"  // text extracted, parse pending
	JobStatusParsed  JobStatus = "PARSED"  // fields extracted
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)
