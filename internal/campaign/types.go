package campaign

// GroupID names a recipient-targeting bucket. Values are platform role
// names; the user directory rejects ids it does not know about.
type GroupID string

// SubmitRequest is one compose-form submission for a content item.
// Business rules live in Validate, not in binding tags: an invalid
// submission must still reach the pipeline so the draft is retained.
type SubmitRequest struct {
	SubjectID string    `json:"-"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Groups    []GroupID `json:"groups"`
	Confirmed bool      `json:"confirm"`
}

// JobMessage is a composed send handed to the sender-worker over the queue.
type JobMessage struct {
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
}

func groupStrings(groups []GroupID) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = string(g)
	}
	return out
}
