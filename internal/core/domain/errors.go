package domain

import "errors"

// ErrNotFound indicates a missing record in a repository.
var ErrNotFound = errors.New("domain: not found")
