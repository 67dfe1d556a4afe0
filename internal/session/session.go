// Package session drives one authenticated walk of the complaint portal
// through a headless browser.
//
// A Session owns exactly one browser connection and steps it through an
// ordered sequence of stateful views: login, complaint listing, per-item
// detail, reply submission. The remote view is stateful and navigation is
// destructive, so the session always returns to the listing between item
// detail views.
//
// Failure contract: no remote-interaction error escapes this package. Every
// operation converts timeouts, missing elements and navigation failures to a
// boolean or empty result plus a logged diagnostic, leaving the session in a
// well-defined state.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"reclamebot/internal/errors"
)

// userAgent replaces the headless-Chrome default, which some portals treat as
// an automation signature.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// landingPollInterval is how often the post-login URL is rechecked while
// waiting for the landing indicator.
const landingPollInterval = 500 * time.Millisecond

// Complaint is one unresolved complaint as extracted from the portal.
type Complaint struct {
	ID           string `json:"id"`
	CustomerName string `json:"customer_name"`
	Text         string `json:"text"`
}

// State identifies where the session is in its walk of the portal.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateBrowsing
	StateComplaintOpen
	StateSubmitting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateBrowsing:
		return "browsing"
	case StateComplaintOpen:
		return "complaint-open"
	case StateSubmitting:
		return "submitting"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Session.
type Options struct {
	BaseURL  string // Portal base URL, no trailing slash required
	Email    string // Portal login email
	Password string // Portal login password

	Headless bool   // Run the browser without a visible window
	ExecPath string // Optional browser binary path (chromium installs)

	NavigationTimeout time.Duration // Bound on every page navigation
	WaitTimeout       time.Duration // Bound on every element wait

	// TypeDelay paces reply entry to emulate human input cadence. This is
	// required behavior, not an optimization: instantaneous text entry is a
	// bot signature the portal may block on. Zero disables pacing (tests).
	TypeDelay time.Duration
}

// Session is one authenticated browser connection to the portal.
//
// Sessions are not safe for concurrent use; the orchestrator guarantees a
// single caller per session.
type Session struct {
	opts Options

	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc

	state     State
	closeOnce sync.Once
}

// New creates a session with a fresh browser context. The browser process is
// not launched until the first remote operation runs.
func New(opts Options) *Session {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	return &Session{
		opts:        opts,
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		state:       StateAnonymous,
	}
}

// State returns the session's current position in the portal walk.
func (s *Session) State() State {
	return s.state
}

// Login navigates to the login surface, submits credentials and waits for a
// post-login landing indicator.
//
// Returns true only on confirmed arrival at an authenticated surface. On any
// failure the session remains Anonymous and the diagnostic is logged.
func (s *Session) Login() bool {
	if s.state == StateClosed {
		log.Println("  ✗ Login on a closed session")
		return false
	}

	s.state = StateAuthenticating
	log.Println("  → Navigating to login page...")

	err := s.run(s.opts.NavigationTimeout,
		emulation.SetUserAgentOverride(userAgent),
		chromedp.Navigate(s.opts.BaseURL+"/login"),
	)
	if err != nil {
		s.state = StateAnonymous
		log.Println("  ✗", errors.NewLoginFailedError("failed to load login page", err))
		return false
	}

	emailSel, err := s.waitAnyVisible(loginEmailField)
	if err != nil {
		s.state = StateAnonymous
		log.Println("  ✗", errors.NewLoginFailedError("login form never rendered", err))
		return false
	}

	passwordSel, err := s.waitAnyVisible(loginPasswordField)
	if err != nil {
		s.state = StateAnonymous
		log.Println("  ✗", errors.NewLoginFailedError("password field never rendered", err))
		return false
	}

	log.Println("  → Submitting login credentials...")
	err = s.run(s.opts.WaitTimeout,
		chromedp.Clear(emailSel, chromedp.ByQuery),
		chromedp.SendKeys(emailSel, s.opts.Email, chromedp.ByQuery),
		chromedp.Clear(passwordSel, chromedp.ByQuery),
		chromedp.SendKeys(passwordSel, s.opts.Password, chromedp.ByQuery),
		chromedp.Click(loginSubmitButton.joined(), chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		s.state = StateAnonymous
		log.Println("  ✗", errors.NewLoginFailedError("failed to submit login form", err))
		return false
	}

	if err := s.waitForLanding(); err != nil {
		s.state = StateAnonymous
		log.Println("  ✗", errors.NewLoginFailedError("landing page never appeared", err))
		return false
	}

	s.state = StateAuthenticated
	log.Println("  ✓ Login successful")
	return true
}

// ListNewComplaints navigates to the unresolved-complaints listing and
// extracts every item it can.
//
// A failure while extracting one item is logged and that item skipped; the
// remaining items are still extracted. Returns the successful subset,
// possibly empty, never an error.
func (s *Session) ListNewComplaints() []Complaint {
	if s.state != StateAuthenticated {
		log.Printf("  ✗ ListNewComplaints requires an authenticated session (state: %s)", s.state)
		return nil
	}

	s.state = StateBrowsing
	defer func() {
		if s.state != StateClosed {
			s.state = StateAuthenticated
		}
	}()

	log.Println("  → Navigating to complaints listing...")
	if err := s.run(s.opts.NavigationTimeout, chromedp.Navigate(s.listURL())); err != nil {
		log.Println("  ✗", errors.NewFetchError("failed to navigate to listing", err))
		return nil
	}

	itemSel, err := s.waitAnyVisible(complaintItem)
	if err != nil {
		if s.sessionExpired() {
			log.Println("  ✗", errors.NewSessionExpiredError("redirected to login from listing"))
		} else {
			log.Println("  ✗", errors.NewFetchError("complaint list did not render", err))
		}
		return nil
	}

	summaries, err := s.extractSummaries(itemSel)
	if err != nil {
		log.Println("  ✗", errors.NewFetchError("failed to extract complaint rows", err))
		return nil
	}
	log.Println("  ✓ Found", len(summaries), "complaint items in the listing")

	complaints := collectComplaints(summaries, func(i int) (string, error) {
		return s.openComplaint(itemSel, i)
	})

	log.Println("  ✓ Successfully extracted", len(complaints), "complaints")
	return complaints
}

// collectComplaints drills into each listed item through open, skipping items
// whose extraction fails so one broken row cannot sink the rest of the
// listing.
func collectComplaints(summaries []summary, open func(index int) (string, error)) []Complaint {
	var complaints []Complaint
	for i, sum := range summaries {
		text, err := open(i)
		if err != nil {
			log.Printf("  ⚠️  Skipping complaint %s: %v", sum.ID, err)
			continue
		}
		complaints = append(complaints, Complaint{
			ID:           sum.ID,
			CustomerName: sum.CustomerName,
			Text:         text,
		})
	}
	return complaints
}

// SubmitResponse navigates to the complaint's reply surface, enters the text
// paced per-character and waits for the portal's success indicator.
//
// Returns true only on a confirmed success indicator within the wait bound.
func (s *Session) SubmitResponse(complaintID, responseText string) bool {
	if s.state != StateAuthenticated {
		log.Printf("  ✗ SubmitResponse requires an authenticated session (state: %s)", s.state)
		return false
	}

	s.state = StateSubmitting
	defer func() {
		if s.state != StateClosed {
			s.state = StateAuthenticated
		}
	}()

	log.Println("  → Opening reply surface for complaint", complaintID)
	if err := s.run(s.opts.NavigationTimeout, chromedp.Navigate(s.complaintURL(complaintID))); err != nil {
		log.Println("  ✗", errors.NewSubmitFailedError(complaintID, "failed to open reply surface", err))
		return false
	}

	fieldSel, err := s.waitAnyVisible(responseField)
	if err != nil {
		log.Println("  ✗", errors.NewSubmitFailedError(complaintID, "response field never rendered", err))
		return false
	}

	log.Println("  → Entering response text...")
	err = s.run(s.opts.WaitTimeout+typeDuration(responseText, s.opts.TypeDelay),
		chromedp.Clear(fieldSel, chromedp.ByQuery),
		s.typeSlowly(fieldSel, responseText),
	)
	if err != nil {
		log.Println("  ✗", errors.NewSubmitFailedError(complaintID, "failed to enter response text", err))
		return false
	}

	log.Println("  → Submitting response...")
	err = s.run(s.opts.WaitTimeout,
		chromedp.Click(submitResponseButton.joined(), chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		log.Println("  ✗", errors.NewSubmitFailedError(complaintID, "failed to click submit", err))
		return false
	}

	if _, err := s.waitAnyVisible(successMessage); err != nil {
		log.Println("  ✗", errors.NewSubmitFailedError(complaintID, "no success indicator", err))
		return false
	}

	log.Println("  ✓ Response to complaint", complaintID, "submitted successfully")
	return true
}

// Close tears down the browser connection. Idempotent, best-effort, safe to
// call from any state including before a login was ever attempted.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.state = StateClosed
		if s.cancelCtx != nil {
			s.cancelCtx()
		}
		if s.cancelAlloc != nil {
			s.cancelAlloc()
		}
		log.Println("  ✓ Browser session closed")
	})
}

// summary is the per-row data visible in the listing before drilling in.
type summary struct {
	ID           string `json:"id"`
	CustomerName string `json:"customer_name"`
}

// extractSummaries pulls id and customer name for every visible list item.
func (s *Session) extractSummaries(itemSel string) ([]summary, error) {
	script := fmt.Sprintf(`
		Array.from(document.querySelectorAll(%q)).map(item => {
			let id = item.getAttribute('data-id');
			if (!id && item.id) {
				const parts = item.id.split('-');
				id = parts[parts.length - 1];
			}
			const nameEl = item.querySelector(%q);
			return {
				id: id || '',
				customer_name: nameEl ? nameEl.innerText.trim() : ''
			};
		}).filter(item => item.id !== '')
	`, itemSel, customerName.joined())

	var summaries []summary
	if err := s.run(s.opts.WaitTimeout, chromedp.Evaluate(script, &summaries)); err != nil {
		return nil, err
	}
	return summaries, nil
}

// openComplaint drills into the i-th visible list item, reads the full
// complaint text, then navigates back and re-waits for the list. The listing
// view is destroyed by the drill-in, so the return trip is required before
// the next item can be opened.
func (s *Session) openComplaint(itemSel string, index int) (string, error) {
	s.state = StateComplaintOpen
	defer func() {
		if s.state == StateComplaintOpen {
			s.state = StateBrowsing
		}
	}()

	click := fmt.Sprintf(`
		(function() {
			const items = document.querySelectorAll(%q);
			if (items.length <= %d) return false;
			items[%d].click();
			return true;
		})()
	`, itemSel, index, index)

	var clicked bool
	if err := s.run(s.opts.WaitTimeout, chromedp.Evaluate(click, &clicked)); err != nil {
		return "", errors.NewFetchError("failed to open complaint item", err)
	}
	if !clicked {
		return "", errors.NewFetchError("complaint item disappeared from listing", nil)
	}

	textSel, err := s.waitAnyVisible(complaintText)
	if err != nil {
		// Try to get back to the listing so later items are still reachable.
		s.returnToListing(itemSel)
		return "", errors.NewFetchError("complaint detail did not render", err)
	}

	var text string
	if err := s.run(s.opts.WaitTimeout, chromedp.Text(textSel, &text, chromedp.ByQuery)); err != nil {
		s.returnToListing(itemSel)
		return "", errors.NewFetchError("failed to read complaint text", err)
	}

	if err := s.returnToListing(itemSel); err != nil {
		return "", errors.NewFetchError("failed to return to listing", err)
	}

	return strings.TrimSpace(text), nil
}

// returnToListing navigates back from a detail view and waits for the list
// to render again.
func (s *Session) returnToListing(itemSel string) error {
	if err := s.run(s.opts.NavigationTimeout, chromedp.NavigateBack()); err != nil {
		return err
	}
	return s.run(s.opts.WaitTimeout, chromedp.WaitVisible(itemSel, chromedp.ByQuery))
}

// typeSlowly enters text into sel one character at a time, sleeping the
// configured delay between keystrokes.
func (s *Session) typeSlowly(sel, text string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if s.opts.TypeDelay <= 0 {
			return chromedp.SendKeys(sel, text, chromedp.ByQuery).Do(ctx)
		}
		for _, r := range text {
			if err := chromedp.SendKeys(sel, string(r), chromedp.ByQuery).Do(ctx); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.opts.TypeDelay):
			}
		}
		return nil
	})
}

// waitForLanding polls the current URL until it carries a landing marker or
// the wait bound expires.
func (s *Session) waitForLanding() error {
	deadline := time.Now().Add(s.opts.WaitTimeout)
	for {
		var url string
		if err := s.run(s.opts.WaitTimeout, chromedp.Location(&url)); err != nil {
			return err
		}
		if isLandingURL(url) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("still at %s after %v", url, s.opts.WaitTimeout)
		}
		time.Sleep(landingPollInterval)
	}
}

// waitAnyVisible polls the lookup's candidates in order until one resolves or
// the wait bound expires, and returns the winning selector.
func (s *Session) waitAnyVisible(l lookup) (string, error) {
	deadline := time.Now().Add(s.opts.WaitTimeout)
	for {
		sel, ok := l.firstMatch(s.elementExists)
		if ok {
			return sel, nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%s not found after %v (tried %s)",
				l.name, s.opts.WaitTimeout, l.joined())
		}
		time.Sleep(250 * time.Millisecond)
	}
}

// elementExists probes one selector without waiting.
func (s *Session) elementExists(sel string) (bool, error) {
	var exists bool
	script := fmt.Sprintf(`document.querySelector(%q) !== null`, sel)
	if err := s.run(s.opts.WaitTimeout, chromedp.Evaluate(script, &exists)); err != nil {
		return false, err
	}
	return exists, nil
}

// sessionExpired checks whether the portal bounced us back to the login form.
func (s *Session) sessionExpired() bool {
	return loginFormPresent(s.elementExists)
}

// loginFormPresent reports whether either login-form convention is in the
// current document.
func loginFormPresent(exists func(sel string) (bool, error)) bool {
	_, ok := loginEmailField.firstMatch(exists)
	return ok
}

// run executes actions against the browser bounded by timeout, following the
// one-timeout-per-step rule: on expiry the step fails cleanly and the session
// state is still well-defined.
func (s *Session) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (s *Session) listURL() string {
	return s.opts.BaseURL + "/empresa/dashboard/reclamacoes/novas"
}

func (s *Session) complaintURL(id string) string {
	return s.opts.BaseURL + "/empresa/reclamacao/" + id
}

// typeDuration is the extra budget paced typing needs on top of the normal
// wait bound.
func typeDuration(text string, delay time.Duration) time.Duration {
	return time.Duration(len([]rune(text))) * delay
}
