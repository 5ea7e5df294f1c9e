package email

import (
	"fmt"
	"strings"
)

const confirmationSubject = "Confirm your WanderWise account"

// Composer builds the confirmation message. BaseURL is the absolute prefix
// under which the service is reachable, without a trailing slash.
type Composer struct {
	baseURL string
}

func NewComposer(baseURL string) *Composer {
	return &Composer{baseURL: strings.TrimRight(baseURL, "/")}
}

// ConfirmationURL returns the absolute link the recipient follows to verify
// their address.
func (c *Composer) ConfirmationURL(userID, rawToken string) string {
	return fmt.Sprintf("%s/accounts/confirm-email/%s/%s/", c.baseURL, userID, rawToken)
}

// Confirmation renders the subject and plain-text body for a confirmation
// email addressed to the given user.
func (c *Composer) Confirmation(firstName, userID, rawToken string) (subject, body string) {
	greeting := "Hi"
	if firstName != "" {
		greeting = "Hi " + firstName
	}

	link := c.ConfirmationURL(userID, rawToken)
	body = fmt.Sprintf(`%s,

Thanks for signing up with WanderWise! Please confirm your email address by
visiting the link below:

%s

If you did not create this account, you can safely ignore this message.

The WanderWise team
`, greeting, link)

	return confirmationSubject, body
}
