package homework

import "fmt"

var verdicts = map[Status]string{
	StatusApproved:  "The work has been reviewed: the reviewer liked everything. Hooray!",
	StatusReviewing: "The work has been taken for review.",
	StatusRejected:  "The work has been reviewed: the reviewer has remarks.",
	StatusMissing:   "There is no work to review. Sad :(",
}

// Verdict returns the display text for a known status.
func Verdict(s Status) (string, bool) {
	v, ok := verdicts[s]
	return v, ok
}

// Known reports whether s is one of the enumerated statuses.
func (s Status) Known() bool {
	_, ok := verdicts[s]
	return ok
}

// ParseStatus builds the notification text for a raw homework entry.
func ParseStatus(hw map[string]any) (string, error) {
	name, _ := hw[KeyName].(string)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrMissingKey, KeyName)
	}
	rawStatus, ok := hw[KeyStatus]
	if !ok || rawStatus == nil {
		return "", fmt.Errorf("%w: %q", ErrMissingKey, KeyStatus)
	}
	status, ok := rawStatus.(string)
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrUnknownStatus, rawStatus)
	}
	verdict, ok := Verdict(Status(status))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	return fmt.Sprintf("Changed status of \"%s\". %s", name, verdict), nil
}
