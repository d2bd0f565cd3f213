package mailer

import (
	"fmt"
	"strings"
	"text/template"
)

type messageTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[string]messageTemplate{
	TemplateWelcome: {
		subject: "Welcome to Taskvault",
		body: template.Must(template.New(TemplateWelcome).Parse(
			"Hello there {{.Name}}! Welcome aboard, your account is ready.\n")),
	},
	TemplateCancellation: {
		subject: "Sorry to see you go",
		body: template.Must(template.New(TemplateCancellation).Parse(
			"Hello {{.Name}}, we are sad to see you go! Let us know if there is anything that would have kept you on board by replying to this email.\n")),
	},
}

// Render produces the subject and text body for a job's template.
func Render(name string, data map[string]any) (subject, text string, err error) {
	tpl, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var sb strings.Builder
	if err := tpl.body.Execute(&sb, data); err != nil {
		return "", "", err
	}
	return tpl.subject, sb.String(), nil
}
