package datapool

import (
	"bytes"

	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
	"github.com/openpool/datamarket/orm"
)

// UserShares is the aggregated share weight of a single contributor within
// one pool.
type UserShares struct {
	User   datamarket.Address
	Shares int64
}

// Controller provides the read and bookkeeping operations other extensions
// need from the pool registry, without exposing the message handlers.
type Controller struct {
	pools    orm.ModelBucket
	contribs orm.ModelBucket
}

// NewController returns a controller operating on the datapool buckets.
func NewController() *Controller {
	return &Controller{
		pools:    NewPoolBucket(),
		contribs: NewContributionBucket(),
	}
}

// Pool returns the pool with given id, or ErrNotFound.
func (c *Controller) Pool(db datamarket.ReadOnlyKVStore, poolID []byte) (*Pool, error) {
	var pool Pool
	if err := c.pools.One(db, poolID, &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}

// ListPools returns all registered pools together with their ids, ordered
// by id.
func (c *Controller) ListPools(db datamarket.ReadOnlyKVStore) ([]KeyedPool, error) {
	iter := orm.IterAll("pool")
	defer iter.Release()

	var pools []KeyedPool
	for {
		var pool Pool
		key, err := iter.Next(db, &pool)
		if errors.ErrIteratorDone.Is(err) {
			return pools, nil
		}
		if err != nil {
			return nil, err
		}
		pools = append(pools, KeyedPool{PoolID: key, Pool: pool})
	}
}

// KeyedPool is a pool together with its bucket key.
type KeyedPool struct {
	PoolID []byte
	Pool   Pool
}

// AddRevenue increases the gross revenue counter of a pool. The counter is
// monotonic, the amount must be positive and the sum is overflow checked.
func (c *Controller) AddRevenue(db datamarket.KVStore, poolID []byte, amount int64) error {
	if amount <= 0 {
		return errors.Wrap(errors.ErrInput, "amount must be positive")
	}
	pool, err := c.Pool(db, poolID)
	if err != nil {
		return err
	}
	total, err := datamarket.CheckedAdd(pool.TotalRevenue, amount)
	if err != nil {
		return err
	}
	pool.TotalRevenue = total
	_, err = c.pools.Put(db, poolID, pool)
	return err
}

// UserContributions returns all contributions of given user, oldest first.
func (c *Controller) UserContributions(db datamarket.ReadOnlyKVStore, user datamarket.Address) ([]*Contribution, error) {
	var contribs []*Contribution
	if _, err := c.contribs.ByIndex(db, "user", user, &contribs); err != nil {
		return nil, err
	}
	return contribs, nil
}

// PoolContributions returns all contributions made to given pool, oldest
// first.
func (c *Controller) PoolContributions(db datamarket.ReadOnlyKVStore, poolID []byte) ([]*Contribution, error) {
	var contribs []*Contribution
	if _, err := c.contribs.ByIndex(db, "pool", poolID, &contribs); err != nil {
		return nil, err
	}
	return contribs, nil
}

// PoolShares aggregates the share weights of a pool per distinct user. The
// result is ordered by first contribution, so that processing it is
// deterministic. The second return value is the total of all shares.
func (c *Controller) PoolShares(db datamarket.ReadOnlyKVStore, poolID []byte) ([]UserShares, int64, error) {
	contribs, err := c.PoolContributions(db, poolID)
	if err != nil {
		return nil, 0, err
	}

	var (
		shares []UserShares
		total  int64
	)
	for _, contrib := range contribs {
		total, err = datamarket.CheckedAdd(total, int64(contrib.Shares))
		if err != nil {
			return nil, 0, err
		}
		pos := -1
		for i := range shares {
			if bytes.Equal(shares[i].User, contrib.User) {
				pos = i
				break
			}
		}
		if pos == -1 {
			shares = append(shares, UserShares{User: contrib.User})
			pos = len(shares) - 1
		}
		sum, err := datamarket.CheckedAdd(shares[pos].Shares, int64(contrib.Shares))
		if err != nil {
			return nil, 0, err
		}
		shares[pos].Shares = sum
	}
	return shares, total, nil
}
