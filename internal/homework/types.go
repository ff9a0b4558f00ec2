package homework

// Status is the review state of a submission as reported by the API.
type Status string

const (
	StatusApproved  Status = "approved"
	StatusReviewing Status = "reviewing"
	StatusRejected  Status = "rejected"
	// StatusMissing is the sentinel used when the API reports no homework.
	StatusMissing Status = "missing"
)

// JSON keys of the review API payload.
const (
	KeyCurrentDate = "current_date"
	KeyHomeworks   = "homeworks"
	KeyName        = "homework_name"
	KeyStatus      = "status"
)

// PlaceholderName names the synthetic submission used when homeworks is empty.
const PlaceholderName = "There is no homework yet"

// Submission is the latest homework as seen by the poll loop.
type Submission struct {
	Name   string `json:"homework_name"`
	Status Status `json:"status"`
}

// Placeholder returns the synthetic submission for an empty homeworks list.
func Placeholder() Submission {
	return Submission{Name: PlaceholderName, Status: StatusMissing}
}

// Map renders the submission in the raw payload form ParseStatus accepts.
func (s Submission) Map() map[string]any {
	return map[string]any{KeyName: s.Name, KeyStatus: string(s.Status)}
}

// SubmissionFrom extracts name and status from a raw homework mapping.
// ok is false when the name is absent, empty or not a string, or the status
// is absent or not a string; ParseStatus explains which.
func SubmissionFrom(hw map[string]any) (sub Submission, ok bool) {
	name, nameOK := hw[KeyName].(string)
	status, statusOK := hw[KeyStatus].(string)
	sub = Submission{Name: name, Status: Status(status)}
	return sub, nameOK && name != "" && statusOK
}
