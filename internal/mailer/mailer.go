package mailer

import "embed"

const (
	FromName                  = "Parfum"
	maxRetries                = 3
	OrderConfirmationTemplate = "order_confirmation.tmpl"
	OrderAcceptedTemplate     = "order_accepted.tmpl"
)

//go:embed "templates"
var FS embed.FS

// Client sends one transactional email. Callers treat failures as
// non-fatal: an email that does not go out never rolls back the state
// change that triggered it.
type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
