package revenue

import (
	"encoding/binary"
	"fmt"
	"strconv"

	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
	"github.com/openpool/datamarket/gconf"
	"github.com/openpool/datamarket/orm"
	"github.com/openpool/datamarket/x"
	"github.com/openpool/datamarket/x/access"
	"github.com/openpool/datamarket/x/datapool"
)

// PoolController is the part of the datapool extension this package needs.
// It is implemented by datapool.Controller.
type PoolController interface {
	Pool(db datamarket.ReadOnlyKVStore, poolID []byte) (*datapool.Pool, error)
	AddRevenue(db datamarket.KVStore, poolID []byte, amount int64) error
	PoolShares(db datamarket.ReadOnlyKVStore, poolID []byte) ([]datapool.UserShares, int64, error)
}

// GrantIssuer creates access grants for paid purchases. It is implemented
// by access.Issuer.
type GrantIssuer interface {
	Issue(db datamarket.KVStore, now datamarket.UnixTime, buyer datamarket.Address, poolID []byte, duration datamarket.UnixDuration) ([]byte, *access.Grant, error)
}

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r datamarket.Registry, auth x.Authenticator, pools PoolController, grants GrantIssuer) {
	shares := NewShareBucket()

	r.Handle(&PurchaseAccessMsg{}, PurchaseAccessHandler{
		auth:      auth,
		pools:     pools,
		grants:    grants,
		purchases: NewPurchaseBucket(),
		shares:    shares,
	})
	r.Handle(&ClaimRevenueMsg{}, ClaimRevenueHandler{
		auth:   auth,
		shares: shares,
	})
	r.Handle(&UpdateConfigurationMsg{},
		gconf.NewUpdateConfigurationHandler("revenue", &Configuration{}, auth))
}

// PurchaseAccessHandler processes payments. A successful purchase records
// the payment, splits the net amount into claimable shares and issues an
// access grant.
type PurchaseAccessHandler struct {
	auth      x.Authenticator
	pools     PoolController
	grants    GrantIssuer
	purchases orm.ModelBucket
	shares    orm.ModelBucket
}

var _ datamarket.Handler = PurchaseAccessHandler{}

func (h PurchaseAccessHandler) Check(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*datamarket.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &datamarket.CheckResult{}, nil
}

func (h PurchaseAccessHandler) Deliver(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*datamarket.DeliverResult, error) {
	msg, _, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	blockTime, err := datamarket.BlockTime(ctx)
	if err != nil {
		return nil, err
	}
	now := datamarket.AsUnixTime(blockTime)

	var conf Configuration
	if err := gconf.Load(db, "revenue", &conf); err != nil {
		return nil, errors.Wrap(err, "configuration")
	}

	fee := feeAmount(msg.Amount, conf.FeeBps)
	distributable := msg.Amount - fee

	distributed, err := h.distribute(db, msg.PoolID, distributable, now)
	if err != nil {
		return nil, err
	}

	purchase := &Purchase{
		Buyer:        msg.Buyer,
		PoolID:       msg.PoolID,
		Amount:       msg.Amount,
		Timestamp:    now,
		AccessExpiry: now.Add(msg.Duration.Duration()),
	}
	if _, err := h.purchases.Put(db, nil, purchase); err != nil {
		return nil, errors.Wrap(err, "cannot store purchase")
	}

	// The pool counter tracks the gross amount, fee included.
	if err := h.pools.AddRevenue(db, msg.PoolID, msg.Amount); err != nil {
		return nil, errors.Wrap(err, "cannot account revenue")
	}

	grantID, _, err := h.grants.Issue(db, now, msg.Buyer, msg.PoolID, msg.Duration)
	if err != nil {
		return nil, errors.Wrap(err, "cannot issue grant")
	}

	res := &datamarket.DeliverResult{
		Data: grantID,
		Events: []datamarket.Event{
			datamarket.NewEvent("access_purchased",
				"pool_id", fmt.Sprintf("%x", msg.PoolID),
				"buyer", msg.Buyer.String(),
				"amount", strconv.FormatInt(msg.Amount, 10),
				"grant_id", fmt.Sprintf("%x", grantID),
			),
			datamarket.NewEvent("revenue_distributed",
				"pool_id", fmt.Sprintf("%x", msg.PoolID),
				"distributed", strconv.FormatInt(distributed, 10),
				"fee", strconv.FormatInt(fee, 10),
			),
		},
	}
	return res, nil
}

// distribute splits the distributable amount among the pool contributors
// proportionally to their share weights, rounding down. Contributors whose
// cut rounds to zero get no record. The sum of all payouts is returned.
func (h PurchaseAccessHandler) distribute(db datamarket.KVStore, poolID []byte, distributable int64, now datamarket.UnixTime) (int64, error) {
	userShares, totalShares, err := h.pools.PoolShares(db, poolID)
	if err != nil {
		return 0, errors.Wrap(err, "cannot aggregate shares")
	}
	// A pool without contributions keeps the whole net amount
	// undistributed.
	if totalShares == 0 {
		return 0, nil
	}

	var distributed int64
	for _, us := range userShares {
		cut, err := payout(distributable, us.Shares, totalShares)
		if err != nil {
			return 0, err
		}
		if cut == 0 {
			continue
		}
		share := &Share{
			User:      us.User,
			PoolID:    poolID,
			Amount:    cut,
			Timestamp: now,
		}
		if _, err := h.shares.Put(db, nil, share); err != nil {
			return 0, errors.Wrap(err, "cannot store share")
		}
		distributed += cut
	}
	return distributed, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h PurchaseAccessHandler) validate(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*PurchaseAccessMsg, *datapool.Pool, error) {
	var msg PurchaseAccessMsg
	if err := datamarket.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	// The buyer must authorize this.
	if !h.auth.HasAddress(ctx, msg.Buyer) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "buyer did not sign transaction")
	}

	pool, err := h.pools.Pool(db, msg.PoolID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot load pool")
	}
	if !pool.Active {
		return nil, nil, errors.Wrap(errors.ErrState, "pool is not active")
	}
	return &msg, pool, nil
}

// ClaimRevenueHandler settles all unclaimed revenue shares of a user.
type ClaimRevenueHandler struct {
	auth   x.Authenticator
	shares orm.ModelBucket
}

var _ datamarket.Handler = ClaimRevenueHandler{}

func (h ClaimRevenueHandler) Check(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*datamarket.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &datamarket.CheckResult{}, nil
}

func (h ClaimRevenueHandler) Deliver(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*datamarket.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	var shares []*Share
	keys, err := h.shares.ByIndex(db, "user", msg.User, &shares)
	if err != nil {
		return nil, errors.Wrap(err, "cannot list shares")
	}

	// Gather first so that a zero total causes no writes at all.
	var total int64
	for _, s := range shares {
		if s.Claimed {
			continue
		}
		total, err = datamarket.CheckedAdd(total, s.Amount)
		if err != nil {
			return nil, err
		}
	}
	if total == 0 {
		return nil, errors.Wrap(ErrNothingToClaim, "no unclaimed revenue")
	}

	for i, s := range shares {
		if s.Claimed {
			continue
		}
		s.Claimed = true
		if _, err := h.shares.Put(db, keys[i], s); err != nil {
			return nil, errors.Wrap(err, "cannot update share")
		}
	}

	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, uint64(total))
	res := &datamarket.DeliverResult{
		Data: data,
		Events: []datamarket.Event{
			datamarket.NewEvent("revenue_claimed",
				"user", msg.User.String(),
				"amount", strconv.FormatInt(total, 10),
			),
		},
	}
	return res, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h ClaimRevenueHandler) validate(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*ClaimRevenueMsg, error) {
	var msg ClaimRevenueMsg
	if err := datamarket.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	// The earning user must authorize this.
	if !h.auth.HasAddress(ctx, msg.User) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "user did not sign transaction")
	}
	return &msg, nil
}
