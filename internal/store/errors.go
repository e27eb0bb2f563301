package store

import (
	"fmt"

	"channelduel/internal/faults"
)

// Token consumption failures. Callers distinguish a replayed token from
// a token bound to a different player, mode, or pair.
var (
	ErrTokenNotFound        = fmt.Errorf("vote token not found: %w", faults.ErrNotFound)
	ErrTokenAlreadyConsumed = fmt.Errorf("vote token already consumed: %w", faults.ErrConflict)
	ErrTokenMismatch        = fmt.Errorf("vote token does not match submission: %w", faults.ErrInvalidInput)
)
