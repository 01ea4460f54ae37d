package revenue

import (
	"github.com/openpool/datamarket/errors"
)

// ErrNothingToClaim is returned when a claim is attempted with a zero
// unclaimed balance. Retrying a settled claim is safe and ends up here.
var ErrNothingToClaim = errors.Register(100, "nothing to claim")
