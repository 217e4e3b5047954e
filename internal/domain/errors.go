package domain

import "errors"

// ErrHistoryUnavailable is returned when a history backend cannot be reached.
var ErrHistoryUnavailable = errors.New("history unavailable")
