package core

import "errors"

// ErrNotFound is returned by storage-layer lookups that miss.
var ErrNotFound = errors.New("core: not found")
