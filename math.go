package datamarket

import (
	"github.com/openpool/datamarket/errors"
)

// CheckedAdd returns the sum of both arguments. Monetary amounts must never
// wrap around, an overflow is a hard fault reported as ErrOverflow.
func CheckedAdd(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", a, b)
	}
	return sum, nil
}
