package dispatch

import "context"

// PushSender delivers a push notification to one device token.
type PushSender interface {
	SendPush(ctx context.Context, deviceToken, message string) error
}

// MailSender delivers one email.
type MailSender interface {
	SendMail(ctx context.Context, to, subject, body string) error
}

// LogPushSender is a PushSender that only records the delivery in the log.
// Used until a real provider (FCM, APNs) is configured.
type LogPushSender struct {
	Logger Logger
}

// SendPush implements PushSender.
func (s *LogPushSender) SendPush(_ context.Context, deviceToken, message string) error {
	s.Logger.Info("push delivered (log sink)",
		"device_token", deviceToken,
		"message_len", len(message),
	)
	return nil
}

// LogMailSender is a MailSender that only records the delivery in the log.
type LogMailSender struct {
	Logger Logger
}

// SendMail implements MailSender.
func (s *LogMailSender) SendMail(_ context.Context, to, subject, body string) error {
	s.Logger.Info("mail delivered (log sink)",
		"to", to,
		"subject", subject,
		"body_len", len(body),
	)
	return nil
}
