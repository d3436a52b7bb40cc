package controller

// Message types.
type fileDoneMsg struct {
	path    string
	status  string
	changes int
}

type runFinishedMsg struct{}

// File statuses shown in the recent list.
const (
	statusChanged   = "changed"
	statusUnchanged = "unchanged"
	statusFailed    = "failed"
)
