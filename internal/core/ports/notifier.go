package ports

import "context"

// Audience identifies who a notification is for: the shared admin channel or
// a single user's channel.
type Audience struct {
	Admin    bool
	Username string
}

// AdminAudience addresses the shared admin channel.
func AdminAudience() Audience {
	return Audience{Admin: true}
}

// UserAudience addresses the given user's channel.
func UserAudience(username string) Audience {
	return Audience{Username: username}
}

// Notifier publishes workflow notifications. Publishing is at-most-once and
// best-effort: implementations log failures and never surface them to the
// caller, so a lost notification can never roll back a committed transition.
type Notifier interface {
	Notify(ctx context.Context, audience Audience, message string)
}
