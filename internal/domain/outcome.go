package domain

// Status is the result kind of syncing one file.
type Status string

const (
	StatusDownloaded Status = "downloaded"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Reason explains a failed outcome.
type Reason string

const (
	ReasonInvalidPath Reason = "invalid_path"
	ReasonUnnamed     Reason = "unnamed"
	ReasonTransport   Reason = "transport"
	ReasonCatalog     Reason = "catalog" // the file's own catalog record could not be fetched
)

// Outcome is the per-file unit reported to consumers of a sync run.
type Outcome struct {
	Status Status
	Name   string // resolved display name, or the URL when no name could be derived
	Path   string // absolute-or-root-relative target path; empty when never computed
	Bytes  int64
	Reason Reason
	Err    error
}

func Downloaded(name, path string, n int64) Outcome {
	return Outcome{Status: StatusDownloaded, Name: name, Path: path, Bytes: n}
}

func Skipped(name, path string) Outcome {
	return Outcome{Status: StatusSkipped, Name: name, Path: path}
}

func Failed(name, path string, reason Reason, err error) Outcome {
	return Outcome{Status: StatusFailed, Name: name, Path: path, Reason: reason, Err: err}
}
