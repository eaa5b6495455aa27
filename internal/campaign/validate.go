package campaign

// Subject length bounds. 78 is the historic RFC 2822 line limit the
// original form enforced.
const (
	subjectMinLen = 5
	subjectMaxLen = 78
)

// ValidationError is a user-correctable composition error. Its message is
// shown to the author as-is.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

var (
	ErrSubjectMissing = &ValidationError{"You have to add a subject."}
	ErrSubjectLength  = &ValidationError{"The subject must be between 5 and 78 characters long."}
	ErrBodyMissing    = &ValidationError{"You have to type a message in order to send emails."}
	ErrNoGroups       = &ValidationError{"Your emails have NOT been sent out because you did not select any user groups to send to."}
)

// NoticeNotConfirmed is queued when a composed submission arrives without
// the confirmation flag. Expected on the first submit of the two-step
// confirm flow, so it is not an error.
const NoticeNotConfirmed = "You have composed an email, but you have not confirmed that it is to be sent."

// NotConfirmedError reports that the submission lacked the confirmation
// flag. Composed is true when there was something worth confirming.
type NotConfirmedError struct {
	Composed bool
}

func (e *NotConfirmedError) Error() string { return "submission is not confirmed" }

// Validate applies the composition rules in order, first failure wins.
// A nil return means the submission may be sent.
func Validate(confirmed bool, subject, body string, groups []GroupID) error {
	if !confirmed {
		return &NotConfirmedError{Composed: body != "" && len(groups) > 0}
	}
	if subject == "" {
		return ErrSubjectMissing
	}
	if n := len(subject); n < subjectMinLen || n > subjectMaxLen {
		return ErrSubjectLength
	}
	if body == "" {
		return ErrBodyMissing
	}
	if len(groups) == 0 {
		return ErrNoGroups
	}
	return nil
}
