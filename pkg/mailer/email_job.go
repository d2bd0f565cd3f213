package mailer

// Template names understood by the worker.
const (
	TemplateWelcome      = "welcome"
	TemplateCancellation = "cancellation"
)

// EmailJob is the JSON payload put on the RabbitMQ queue. The API process
// only ever enqueues; rendering and delivery happen in the email worker.
type EmailJob struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}

// WelcomeJob builds the post-registration notification.
func WelcomeJob(email, name string) EmailJob {
	return EmailJob{
		To:       email,
		Template: TemplateWelcome,
		Data:     map[string]any{"Name": name},
	}
}

// CancellationJob builds the account-deletion notification.
func CancellationJob(email, name string) EmailJob {
	return EmailJob{
		To:       email,
		Template: TemplateCancellation,
		Data:     map[string]any{"Name": name},
	}
}
