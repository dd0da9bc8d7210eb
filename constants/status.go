package constants

// JobStatus is the canonical status for rows in extract_jobs.
type JobStatus string

// Stable values (store these exact strings in the DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"  // waiting for a worker
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusTextOK  JobStatus = "TEXT_OK" // stage 1 completed (raw text extracted)
	JobStatusParsed  JobStatus = "PARSED"  // stage 2 completed (fields extracted)
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)
