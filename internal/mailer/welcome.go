package mailer

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"
)

// WelcomeSubject is the subject line of the welcome email.
const WelcomeSubject = "🚀 Your Startup Journey Just Got Easier – LaunchMate Updates Inside!"

//go:embed welcome.html.tmpl
var welcomeHTML string

var welcomeTmpl = template.Must(template.New("welcome").Parse(welcomeHTML))

// WelcomeMessage renders the welcome email for a new subscriber. The first
// name is HTML-escaped.
func WelcomeMessage(firstName, to string) (Message, error) {
	var b strings.Builder
	if err := welcomeTmpl.Execute(&b, struct{ FirstName string }{firstName}); err != nil {
		return Message{}, fmt.Errorf("render welcome: %w", err)
	}
	return Message{To: to, Subject: WelcomeSubject, HTML: b.String()}, nil
}
