package campaign

import (
	"context"
	"fmt"

	"github.com/postpress/cnotify/internal/directory"
)

// Directory is the user-directory capability recipients are resolved
// against. Implementations must already filter on the opt-in flag.
type Directory interface {
	FindOptedIn(ctx context.Context, groups []string) ([]directory.User, error)
}

// ResolveRecipients expands group ids to the email addresses of opted-in
// members. An empty group set resolves to nothing without touching the
// directory. A user holding several of the groups appears once.
func ResolveRecipients(ctx context.Context, dir Directory, groups []GroupID) ([]string, error) {
	if len(groups) == 0 {
		return nil, nil
	}

	users, err := dir.FindOptedIn(ctx, groupStrings(groups))
	if err != nil {
		return nil, fmt.Errorf("user directory: %w", err)
	}

	seen := make(map[int64]bool, len(users))
	out := make([]string, 0, len(users))
	for _, u := range users {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u.Email)
	}
	return out, nil
}
