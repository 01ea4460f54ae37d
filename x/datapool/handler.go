package datapool

import (
	"fmt"

	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
	"github.com/openpool/datamarket/gconf"
	"github.com/openpool/datamarket/orm"
	"github.com/openpool/datamarket/x"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r datamarket.Registry, auth x.Authenticator) {
	pools := NewPoolBucket()
	contribs := NewContributionBucket()

	r.Handle(&CreatePoolMsg{}, CreatePoolHandler{auth: auth, pools: pools})
	r.Handle(&DeactivatePoolMsg{}, DeactivatePoolHandler{auth: auth, pools: pools})
	r.Handle(&ContributeMsg{}, ContributeHandler{auth: auth, pools: pools, contribs: contribs})
	r.Handle(&UpdateConfigurationMsg{},
		gconf.NewUpdateConfigurationHandler("datapool", &Configuration{}, auth))
}

// CreatePoolHandler creates a pool.
type CreatePoolHandler struct {
	auth  x.Authenticator
	pools orm.ModelBucket
}

var _ datamarket.Handler = CreatePoolHandler{}

func (h CreatePoolHandler) Check(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*datamarket.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &datamarket.CheckResult{}, nil
}

func (h CreatePoolHandler) Deliver(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*datamarket.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := datamarket.BlockTime(ctx)
	if err != nil {
		return nil, err
	}

	pool := &Pool{
		Name:        msg.Name,
		Description: msg.Description,
		Kind:        msg.Kind,
		Creator:     msg.Creator,
		Active:      true,
		CreatedAt:   datamarket.AsUnixTime(now),
	}
	poolID, err := h.pools.Put(db, nil, pool)
	if err != nil {
		return nil, err
	}

	res := &datamarket.DeliverResult{
		Data: poolID,
		Events: []datamarket.Event{
			datamarket.NewEvent("pool_created",
				"pool_id", fmt.Sprintf("%x", poolID),
				"creator", msg.Creator.String(),
				"name", msg.Name,
			),
		},
	}
	return res, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h CreatePoolHandler) validate(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*CreatePoolMsg, error) {
	var msg CreatePoolMsg
	if err := datamarket.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	// The creator must authorize this.
	if !h.auth.HasAddress(ctx, msg.Creator) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "creator did not sign transaction")
	}
	return &msg, nil
}

// DeactivatePoolHandler permanently disables a pool.
type DeactivatePoolHandler struct {
	auth  x.Authenticator
	pools orm.ModelBucket
}

var _ datamarket.Handler = DeactivatePoolHandler{}

func (h DeactivatePoolHandler) Check(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*datamarket.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &datamarket.CheckResult{}, nil
}

func (h DeactivatePoolHandler) Deliver(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*datamarket.DeliverResult, error) {
	msg, pool, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	// A plain state set. Deactivating twice is a no-op after the first.
	pool.Active = false
	if _, err := h.pools.Put(db, msg.PoolID, pool); err != nil {
		return nil, err
	}

	res := &datamarket.DeliverResult{
		Events: []datamarket.Event{
			datamarket.NewEvent("pool_deactivated",
				"pool_id", fmt.Sprintf("%x", msg.PoolID),
			),
		},
	}
	return res, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h DeactivatePoolHandler) validate(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*DeactivatePoolMsg, *Pool, error) {
	var msg DeactivatePoolMsg
	if err := datamarket.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	var pool Pool
	if err := h.pools.One(db, msg.PoolID, &pool); err != nil {
		return nil, nil, errors.Wrap(err, "cannot load pool")
	}

	// Only the pool creator or the marketplace administrator may
	// deactivate a pool.
	if !h.auth.HasAddress(ctx, pool.Creator) && !h.isAdmin(ctx, db) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "neither creator nor administrator")
	}
	return &msg, &pool, nil
}

func (h DeactivatePoolHandler) isAdmin(ctx datamarket.Context, db datamarket.ReadOnlyKVStore) bool {
	var conf Configuration
	if err := gconf.Load(db, "datapool", &conf); err != nil {
		return false
	}
	return h.auth.HasAddress(ctx, conf.Owner)
}

// ContributeHandler appends contributions to active pools.
type ContributeHandler struct {
	auth     x.Authenticator
	pools    orm.ModelBucket
	contribs orm.ModelBucket
}

var _ datamarket.Handler = ContributeHandler{}

func (h ContributeHandler) Check(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*datamarket.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &datamarket.CheckResult{}, nil
}

func (h ContributeHandler) Deliver(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*datamarket.DeliverResult, error) {
	msg, pool, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := datamarket.BlockTime(ctx)
	if err != nil {
		return nil, err
	}

	contrib := &Contribution{
		User:      msg.User,
		PoolID:    msg.PoolID,
		DataHash:  msg.DataHash,
		Timestamp: datamarket.AsUnixTime(now),
		Shares:    1,
	}
	contribID, err := h.contribs.Put(db, nil, contrib)
	if err != nil {
		return nil, err
	}

	pool.TotalContributors++
	if _, err := h.pools.Put(db, msg.PoolID, pool); err != nil {
		return nil, err
	}

	res := &datamarket.DeliverResult{
		Data: contribID,
		Events: []datamarket.Event{
			datamarket.NewEvent("data_contributed",
				"pool_id", fmt.Sprintf("%x", msg.PoolID),
				"user", msg.User.String(),
				"data_hash", fmt.Sprintf("%x", msg.DataHash),
			),
		},
	}
	return res, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h ContributeHandler) validate(ctx datamarket.Context, db datamarket.KVStore, tx datamarket.Tx) (*ContributeMsg, *Pool, error) {
	var msg ContributeMsg
	if err := datamarket.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	// The contributor must authorize this.
	if !h.auth.HasAddress(ctx, msg.User) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "user did not sign transaction")
	}

	var pool Pool
	if err := h.pools.One(db, msg.PoolID, &pool); err != nil {
		return nil, nil, errors.Wrap(err, "cannot load pool")
	}
	if !pool.Active {
		return nil, nil, errors.Wrap(errors.ErrState, "pool is not active")
	}
	return &msg, &pool, nil
}
