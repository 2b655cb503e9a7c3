package repository

import "errors"

var (
	// ErrNavigationFailed is returned when the browser reports a navigation error.
	ErrNavigationFailed = errors.New("navigation failed")
	// ErrPageTimeout is returned when a page does not settle within its deadline.
	ErrPageTimeout = errors.New("page load timed out")
	// ErrBadStatus is returned for non-success HTTP responses.
	ErrBadStatus = errors.New("unexpected http status")
)
