package client

import (
	"context"
	"errors"
	"net/http"
	"sync"

	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
	"github.com/bryanwahyu/aio-strategy/internal/report"
)

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateShowingResult
	StateError
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateShowingResult:
		return "showing-result"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

var (
	// ErrBusy is returned by Submit while a submission is outstanding.
	ErrBusy = errors.New("a submission is already in progress")
	// ErrSignInRequired is returned by Submit when no token is available.
	ErrSignInRequired = errors.New("sign in required")
	// ErrShowingResult is returned by Submit until Back is called.
	ErrShowingResult = errors.New("result is still shown")
	// ErrUnknownField is returned by Set for names outside the form.
	ErrUnknownField = errors.New("unknown form field")
)

// Analyzer is the part of API the shell needs.
type Analyzer interface {
	Analyze(ctx context.Context, token string, in domain.Input) (*AnalyzeResult, error)
}

// TokenSource yields the signed-in user's bearer token, or "" when signed out.
type TokenSource func(ctx context.Context) (string, error)

// Shell holds the submission form and its state. At most one submission is outstanding.
type Shell struct {
	api    Analyzer
	tokens TokenSource

	// OnSignIn is called whenever the user has to (re)authenticate.
	OnSignIn func()

	mu       sync.Mutex
	inFlight bool // set from token lookup until the response is handled
	state    State
	form     domain.Input
	doc      report.Document
	recordID string
	message  string
}

func NewShell(api Analyzer, tokens TokenSource) *Shell {
	return &Shell{api: api, tokens: tokens}
}

// Set edits one form field. Names follow the JSON field names of the input.
func (s *Shell) Set(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch field {
	case "brandName":
		s.form.BrandName = value
	case "officialUrls":
		s.form.OfficialURLs = value
	case "additionalUrls":
		s.form.AdditionalURLs = value
	case "competitors":
		s.form.Competitors = value
	case "goal":
		s.form.Goal = value
	case "conditions":
		s.form.Conditions = value
	case "extraNotes":
		s.form.ExtraNotes = value
	default:
		return ErrUnknownField
	}
	return nil
}

// Submit sends the form. On success the shell shows the rendered report; on
// failure it keeps the form and shows a message for the failure category.
// The token is resolved before the shell enters StateSubmitting, so a
// signed-out submit stays idle.
func (s *Shell) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.state == StateShowingResult {
		s.mu.Unlock()
		return ErrShowingResult
	}
	if err := s.form.Validate(); err != nil {
		s.state, s.message = StateError, "Please enter a brand name."
		s.mu.Unlock()
		return err
	}
	in := s.form
	s.inFlight = true
	s.mu.Unlock()

	var token string
	if s.tokens != nil {
		if t, err := s.tokens(ctx); err == nil {
			token = t
		}
	}
	if token == "" {
		s.mu.Lock()
		s.inFlight = false
		s.state, s.message = StateIdle, ""
		s.mu.Unlock()
		s.signIn()
		return ErrSignInRequired
	}

	s.mu.Lock()
	s.state, s.message = StateSubmitting, ""
	s.mu.Unlock()

	res, err := s.api.Analyze(ctx, token, in)

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		s.state, s.message = StateError, Message(err)
		s.mu.Unlock()
		if IsUnauthorized(err) {
			s.signIn()
		}
		return err
	}
	s.state = StateShowingResult
	s.doc = report.Render(res.Result)
	s.recordID = res.ID
	s.mu.Unlock()
	return nil
}

// Back leaves the result view with a blank form.
func (s *Shell) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateShowingResult {
		return
	}
	s.state = StateIdle
	s.form = domain.Input{}
	s.doc = report.Document{}
	s.recordID = ""
	s.message = ""
}

func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Shell) Form() domain.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Result is the rendered report and record id while showing a result.
func (s *Shell) Result() (report.Document, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc, s.recordID
}

// Message is the user-facing error text while in StateError.
func (s *Shell) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Shell) signIn() {
	if s.OnSignIn != nil {
		s.OnSignIn()
	}
}

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Code == CodeUnauthorized || apiErr.Status == http.StatusUnauthorized)
}

// Message maps a failure to text suitable for the user.
func Message(err error) string {
	if errors.Is(err, ErrNetwork) {
		return "Could not reach the analysis server. Check that the backend is running."
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "Something went wrong. Please try again."
	}
	switch apiErr.Code {
	case CodeUnauthorized:
		return "Your session has expired. Please sign in again."
	case CodeValidation:
		return "Please enter a brand name."
	case CodeConfiguration:
		return "The server is not configured for analyses. Contact the administrator."
	case CodeTimeout:
		return "The analysis took too long. Please try again."
	case CodeUpstream:
		return "The analysis could not be generated: " + apiErr.Message
	default:
		return "Analysis failed: " + apiErr.Message
	}
}
