package revenue

import (
	"math/bits"

	"github.com/openpool/datamarket/errors"
)

// feeAmount returns the marketplace cut of the purchase amount, rounded
// down. The computation is exact, the intermediate product never leaves the
// int64 range because the amount is split at the basis point denominator
// first.
func feeAmount(amount int64, feeBps uint32) int64 {
	bps := int64(feeBps)
	return (amount/10000)*bps + (amount%10000)*bps/10000
}

// payout returns the contributor's cut of the distributable amount, rounded
// down. The full 128 bit product is used so that distributable * shares
// cannot overflow. Shares must not exceed totalShares.
func payout(distributable, shares, totalShares int64) (int64, error) {
	if shares < 0 || totalShares <= 0 || shares > totalShares {
		return 0, errors.Wrap(errors.ErrInput, "shares out of range")
	}
	hi, lo := bits.Mul64(uint64(distributable), uint64(shares))
	// Since shares <= totalShares the quotient is at most distributable,
	// so the division cannot overflow or panic.
	quo, _ := bits.Div64(hi, lo, uint64(totalShares))
	return int64(quo), nil
}
