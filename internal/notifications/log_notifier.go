package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier writes codes to the application log. It stands in for a mail
// provider in development.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendVerificationCode(ctx context.Context, in VerificationCodeInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.verification_code",
		"user_id", in.UserID,
		"email", in.Email,
		"purpose", in.Purpose,
		"code", in.Code,
		"expires_at", in.ExpiresAt,
	)
	return nil
}
