package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation means the input is missing a required field.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized means the bearer credential is missing, invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConfiguration means the deployment lacks something it needs (e.g. an API key).
	ErrConfiguration = errors.New("service misconfigured")
	// ErrUpstream means the completion service failed or returned nothing.
	ErrUpstream = errors.New("completion service failed")
	// ErrTimeout means the request ran past its deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrPersistence is logged only, never returned to callers of Submit.
	ErrPersistence = errors.New("persistence failed")
	// ErrNotFound means no record has the requested id.
	ErrNotFound = errors.New("analysis not found")
)

func Validation(msg string) error { return fmt.Errorf("%w: %s", ErrValidation, msg) }

func Configuration(msg string) error { return fmt.Errorf("%w: %s", ErrConfiguration, msg) }

// Upstream wraps a provider error so both ErrUpstream and the cause match errors.Is.
func Upstream(err error) error { return fmt.Errorf("%w: %w", ErrUpstream, err) }

// UpstreamMessage is Upstream for failures that carry no underlying error.
func UpstreamMessage(msg string) error { return fmt.Errorf("%w: %s", ErrUpstream, msg) }
