package mail

type FollowupReminderData struct {
	OwnerName string
	LeadName  string
	LeadPhone string
	DueText   string
	Note      string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
