package homework

// PollState is what the poll loop remembers between cycles. It lives only in
// memory and starts empty on every process start.
type PollState struct {
	LastName      string
	LastStatus    Status
	LastErrorText string
}

// Observe reports whether cur should be announced.
//
// Both the name and the status must differ from the remembered pair. A status
// change on the same assignment is therefore not announced.
func (s PollState) Observe(cur Submission) bool {
	return s.LastName != cur.Name && s.LastStatus != cur.Status
}

// Remember stores cur as the last announced submission.
func (s *PollState) Remember(cur Submission) {
	s.LastName = cur.Name
	s.LastStatus = cur.Status
}

// ShouldReport reports whether a failure with this text differs from the last
// one reported, and records it if so.
func (s *PollState) ShouldReport(errText string) bool {
	if errText == s.LastErrorText {
		return false
	}
	s.LastErrorText = errText
	return true
}
