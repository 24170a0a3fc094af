package mailer

import "context"

// Mailer is the outbound email transport. Both sends report whether the
// provider accepted the message.
type Mailer interface {
	SendWelcome(ctx context.Context, email, name, intro string) (bool, error)
	SendDigest(ctx context.Context, email, date, digest string) (bool, error)
}
