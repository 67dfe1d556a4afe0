package session

import "strings"

// lookup names one portal concept together with an ordered list of candidate
// CSS selectors. The portal exposes two structural conventions for the same
// concepts (an older English-classed markup and a newer localized one), so
// every element access tries the candidates in sequence and uses the first
// that resolves. Extending coverage to a new portal convention means adding
// a candidate here, not touching the state machine.
type lookup struct {
	name       string
	candidates []string
}

// joined returns the candidates as a single CSS selector group, for waits
// where any convention is acceptable.
func (l lookup) joined() string {
	return strings.Join(l.candidates, ", ")
}

// firstMatch returns the first candidate for which exists reports true.
// Probe errors on one candidate do not mask a later match.
func (l lookup) firstMatch(exists func(sel string) (bool, error)) (string, bool) {
	for _, sel := range l.candidates {
		ok, err := exists(sel)
		if err != nil {
			continue
		}
		if ok {
			return sel, true
		}
	}
	return "", false
}

// Portal element lookups, one per concept the state machine touches.
var (
	loginEmailField = lookup{"login email field", []string{
		"#email",
		"input[name='email']",
	}}

	loginPasswordField = lookup{"login password field", []string{
		"#password",
		"input[name='password']",
	}}

	loginSubmitButton = lookup{"login submit button", []string{
		"button[type='submit']",
	}}

	complaintItem = lookup{"complaint list item", []string{
		".complaint-list-item",
		".reclamacao-item",
	}}

	customerName = lookup{"customer name", []string{
		".customer-name",
		".nome-cliente",
	}}

	complaintText = lookup{"complaint text", []string{
		".complaint-text",
		".texto-reclamacao",
	}}

	responseField = lookup{"response textarea", []string{
		"textarea.response-field",
		"#response-textarea",
	}}

	submitResponseButton = lookup{"submit response button", []string{
		"button.submit-response",
		"#submit-button",
	}}

	successMessage = lookup{"submission success message", []string{
		".success-message",
		".message-success",
	}}
)

// landingMarkers are URL fragments that confirm arrival at an authenticated
// surface after login.
var landingMarkers = []string{"/dashboard", "/empresa"}

// isLandingURL reports whether url looks like a post-login landing page.
func isLandingURL(url string) bool {
	for _, marker := range landingMarkers {
		if strings.Contains(url, marker) {
			return true
		}
	}
	return false
}
