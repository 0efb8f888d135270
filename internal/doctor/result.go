// Package doctor reports the install state of a module variant on a host.
package doctor

// Status is the outcome of a single check.
type Status string

const (
	StatusOK   Status = "OK"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// Result is one line of the doctor report.
type Result struct {
	Status         Status
	CheckName      string
	Message        string
	Recommendation string
}

// HasFailure reports whether any result failed or warned.
func HasFailure(results []Result) bool {
	for _, r := range results {
		if r.Status != StatusOK {
			return true
		}
	}
	return false
}
