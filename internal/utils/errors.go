package utils

import (
	"fmt"
)

// ErrorWithSuggestion wraps an error with a helpful suggestion for the user
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap allows errors.Is and errors.As to work
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// Common error constructors with suggestions

// ErrSyncNotEnabled creates an error when sync operations are attempted but sync is disabled
func ErrSyncNotEnabled() error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("sync is not enabled in configuration"),
		Suggestion: "Enable sync in ~/.config/fitsync/config.json by setting \"sync\": {\"enabled\": true}",
	}
}

// ErrNoRemoteConfigured creates an error when no remote store is configured
func ErrNoRemoteConfigured() error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("no remote store configured"),
		Suggestion: "Set remote.base_url in ~/.config/fitsync/config.json",
	}
}

// ErrNotSignedIn creates an error when a user-scoped operation runs without a user
func ErrNotSignedIn() error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("no authenticated user"),
		Suggestion: "Pass --user <id>, or run 'fitsync adopt <user-id>' after signing in to claim local data",
	}
}

// ErrNoToken creates an error when no API token can be resolved
func ErrNoToken() error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("no API token found"),
		Suggestion: "Run 'fitsync token set' or export FITSYNC_TOKEN",
	}
}
