package directory

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
)

// User is one directory entry, trimmed to what recipient resolution needs.
type User struct {
	ID    int64
	Email string
}

// UnknownGroupError reports a group id the directory has no role for.
// Unknown ids are rejected instead of silently matching nobody.
type UnknownGroupError struct {
	Group string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("unknown recipient group %q", e.Group)
}

// Postgres is the user directory backed by the platform's user tables.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Roles returns every role name known to the platform, sorted.
func (d *Postgres) Roles(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT name FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

// FindOptedIn returns the users who hold any of the given roles and have
// notifications switched on. A user holding several of the roles comes
// back once. Group ids are validated against the roles table first.
func (d *Postgres) FindOptedIn(ctx context.Context, groups []string) ([]User, error) {
	if len(groups) == 0 {
		return nil, nil
	}

	known, err := d.Roles(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		found := false
		for _, r := range known {
			if r == g {
				found = true
				break
			}
		}
		if !found {
			return nil, &UnknownGroupError{Group: g}
		}
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT DISTINCT u.id, u.email
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		JOIN user_prefs p ON p.user_id = u.id
		WHERE ur.role = ANY($1) AND p.receive_notifications
		ORDER BY u.id
	`, textList(groups))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ReceiveNotifications reads a user's opt-in flag. Users without a
// preference row have never opted in.
func (d *Postgres) ReceiveNotifications(ctx context.Context, userID int64) (bool, error) {
	var enabled bool
	err := d.db.QueryRowContext(ctx, `
		SELECT receive_notifications FROM user_prefs WHERE user_id = $1
	`, userID).Scan(&enabled)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return enabled, err
}

func (d *Postgres) SetReceiveNotifications(ctx context.Context, userID int64, enabled bool) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO user_prefs (user_id, receive_notifications)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET receive_notifications = EXCLUDED.receive_notifications
	`, userID, enabled)
	return err
}

type textList []string

func (a textList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		v = strings.ReplaceAll(v, `\`, `\\`)
		v = strings.ReplaceAll(v, `"`, `\"`)
		b.WriteString(v)
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String(), nil
}
