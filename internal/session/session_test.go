package session

import (
	"fmt"
	"testing"
	"time"
)

func testOptions() Options {
	return Options{
		BaseURL:           "https://portal.example.com/",
		Email:             "bot@example.com",
		Password:          "secret",
		Headless:          true,
		NavigationTimeout: time.Second,
		WaitTimeout:       time.Second,
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateAnonymous, "anonymous"},
		{StateAuthenticating, "authenticating"},
		{StateAuthenticated, "authenticated"},
		{StateBrowsing, "browsing"},
		{StateComplaintOpen, "complaint-open"},
		{StateSubmitting, "submitting"},
		{StateClosed, "closed"},
		{State(99), "state(99)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.expected)
		}
	}
}

func TestLookupJoined(t *testing.T) {
	l := lookup{"test", []string{".a", "#b"}}
	if got := l.joined(); got != ".a, #b" {
		t.Errorf("joined() = %q, want %q", got, ".a, #b")
	}
}

func TestLookupFirstMatchOrder(t *testing.T) {
	l := lookup{"test", []string{".first", ".second"}}

	// Both present: the earlier candidate wins.
	sel, ok := l.firstMatch(func(sel string) (bool, error) { return true, nil })
	if !ok || sel != ".first" {
		t.Errorf("expected first candidate to win, got %q (ok=%v)", sel, ok)
	}

	// Only the later convention present.
	sel, ok = l.firstMatch(func(sel string) (bool, error) {
		return sel == ".second", nil
	})
	if !ok || sel != ".second" {
		t.Errorf("expected fallback candidate, got %q (ok=%v)", sel, ok)
	}

	// Neither present.
	if _, ok = l.firstMatch(func(sel string) (bool, error) { return false, nil }); ok {
		t.Error("expected no match when no candidate resolves")
	}
}

func TestLookupFirstMatchSkipsProbeErrors(t *testing.T) {
	l := lookup{"test", []string{".broken", ".working"}}

	sel, ok := l.firstMatch(func(sel string) (bool, error) {
		if sel == ".broken" {
			return false, fmt.Errorf("probe failed")
		}
		return true, nil
	})
	if !ok || sel != ".working" {
		t.Errorf("expected probe error to be skipped, got %q (ok=%v)", sel, ok)
	}
}

func TestIsLandingURL(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://portal.example.com/empresa/dashboard", true},
		{"https://portal.example.com/dashboard", true},
		{"https://portal.example.com/empresa", true},
		{"https://portal.example.com/login", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isLandingURL(tt.url); got != tt.expected {
			t.Errorf("isLandingURL(%q) = %v, want %v", tt.url, got, tt.expected)
		}
	}
}

func TestNewTrimsBaseURL(t *testing.T) {
	s := New(testOptions())
	defer s.Close()

	if s.opts.BaseURL != "https://portal.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", s.opts.BaseURL)
	}
	if got := s.complaintURL("RA-1"); got != "https://portal.example.com/empresa/reclamacao/RA-1" {
		t.Errorf("unexpected complaint URL: %q", got)
	}
	if s.State() != StateAnonymous {
		t.Errorf("expected new session to be anonymous, got %s", s.State())
	}
}

func TestOperationsRequireAuthentication(t *testing.T) {
	s := New(testOptions())
	defer s.Close()

	// Neither operation may touch the browser before login.
	if got := s.ListNewComplaints(); got != nil {
		t.Errorf("expected nil listing for anonymous session, got %v", got)
	}
	if s.SubmitResponse("RA-1", "reply") {
		t.Error("expected SubmitResponse to fail for anonymous session")
	}
	if s.State() != StateAnonymous {
		t.Errorf("expected session to stay anonymous, got %s", s.State())
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := New(testOptions())

	s.Close()
	if s.State() != StateClosed {
		t.Errorf("expected closed state, got %s", s.State())
	}

	// Second close must be a no-op, not a panic on re-cancel.
	s.Close()
	if s.State() != StateClosed {
		t.Errorf("expected state to remain closed, got %s", s.State())
	}
}

func TestCloseWithoutLoginIsSafe(t *testing.T) {
	// Close before any remote operation: no browser was ever launched.
	s := New(testOptions())
	s.Close()

	if s.Login() {
		t.Error("expected Login to fail on a closed session")
	}
}

func TestTypeDuration(t *testing.T) {
	if got := typeDuration("abcd", 10*time.Millisecond); got != 40*time.Millisecond {
		t.Errorf("typeDuration = %v, want 40ms", got)
	}
	if got := typeDuration("", 10*time.Millisecond); got != 0 {
		t.Errorf("typeDuration of empty text = %v, want 0", got)
	}
}

func TestCollectComplaintsSkipsFailedItems(t *testing.T) {
	summaries := []summary{
		{ID: "100", CustomerName: "Ana"},
		{ID: "200", CustomerName: "Bruno"},
		{ID: "300", CustomerName: "Carla"},
	}
	open := func(index int) (string, error) {
		if index == 1 {
			return "", fmt.Errorf("detail view did not render")
		}
		return fmt.Sprintf("complaint text %d", index), nil
	}

	got := collectComplaints(summaries, open)

	if len(got) != 2 {
		t.Fatalf("extracted %d complaints, want the 2 that opened", len(got))
	}
	if got[0].ID != "100" || got[1].ID != "300" {
		t.Errorf("extracted ids %s, %s; want 100, 300", got[0].ID, got[1].ID)
	}
	if got[0].CustomerName != "Ana" || got[1].CustomerName != "Carla" {
		t.Errorf("customer names not carried over: %+v", got)
	}
	if got[0].Text != "complaint text 0" || got[1].Text != "complaint text 2" {
		t.Errorf("texts not carried over: %+v", got)
	}
}

func TestCollectComplaintsAllFailed(t *testing.T) {
	summaries := []summary{{ID: "100"}, {ID: "200"}}
	open := func(int) (string, error) { return "", fmt.Errorf("gone") }

	if got := collectComplaints(summaries, open); len(got) != 0 {
		t.Errorf("extracted %d complaints, want none", len(got))
	}
}

func TestLoginFormPresentChecksBothConventions(t *testing.T) {
	tests := []struct {
		name    string
		present string
		want    bool
	}{
		{"primary convention", "#email", true},
		{"fallback convention", "input[name='email']", true},
		{"no login form", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists := func(sel string) (bool, error) {
				return sel == tt.present, nil
			}
			if got := loginFormPresent(exists); got != tt.want {
				t.Errorf("loginFormPresent = %v, want %v", got, tt.want)
			}
		})
	}
}
