package repository

import "errors"

// ErrNotFound a row is absent, or its event scope does not match.
// Callers cannot distinguish the two cases; a tenant-mismatched id is
// indistinguishable from an absent one.
var ErrNotFound = errors.New("not found")
