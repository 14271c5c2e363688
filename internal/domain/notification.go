package domain

// NotificationRequest is the ephemeral input of one reminder send.
// Nothing about it is persisted.
type NotificationRequest struct {
	GameID     string
	PlayerID   string
	DelayHours int
}

// EmailMessage is what the email channel delivers.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
}
