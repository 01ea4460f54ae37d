package datapool

import (
	"math"
	"testing"

	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
	"github.com/openpool/datamarket/markettest/assert"
	"github.com/openpool/datamarket/store"
)

func TestControllerPoolShares(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()

	alice := markettestAddress(1)
	bob := markettestAddress(2)

	poolID := storePool(t, db, &Pool{
		Name:      "weather data",
		Kind:      PoolKindDataset,
		Creator:   alice,
		Active:    true,
		CreatedAt: 1600000000,
	})

	storeContribution(t, db, alice, poolID)
	storeContribution(t, db, bob, poolID)
	storeContribution(t, db, alice, poolID)

	shares, total, err := ctrl.PoolShares(db, poolID)
	if err != nil {
		t.Fatalf("cannot aggregate shares: %+v", err)
	}
	assert.Equal(t, int64(3), total)
	assert.Equal(t, 2, len(shares))
	// Aggregation order follows the first contribution of each user.
	assert.Equal(t, alice, shares[0].User)
	assert.Equal(t, int64(2), shares[0].Shares)
	assert.Equal(t, bob, shares[1].User)
	assert.Equal(t, int64(1), shares[1].Shares)
}

func TestControllerPoolSharesEmpty(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()

	poolID := storePool(t, db, &Pool{
		Name:      "empty pool",
		Kind:      PoolKindDataset,
		Creator:   markettestAddress(1),
		Active:    true,
		CreatedAt: 1600000000,
	})

	shares, total, err := ctrl.PoolShares(db, poolID)
	if err != nil {
		t.Fatalf("cannot aggregate shares: %+v", err)
	}
	assert.Equal(t, int64(0), total)
	assert.Equal(t, 0, len(shares))
}

func TestControllerAddRevenue(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()

	poolID := storePool(t, db, &Pool{
		Name:      "weather data",
		Kind:      PoolKindDataset,
		Creator:   markettestAddress(1),
		Active:    true,
		CreatedAt: 1600000000,
	})

	if err := ctrl.AddRevenue(db, poolID, 1000); err != nil {
		t.Fatalf("cannot add revenue: %+v", err)
	}
	if err := ctrl.AddRevenue(db, poolID, 500); err != nil {
		t.Fatalf("cannot add revenue: %+v", err)
	}

	pool, err := ctrl.Pool(db, poolID)
	if err != nil {
		t.Fatalf("cannot load pool: %+v", err)
	}
	assert.Equal(t, int64(1500), pool.TotalRevenue)

	if err := ctrl.AddRevenue(db, poolID, 0); !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %+v", err)
	}
	if err := ctrl.AddRevenue(db, poolID, math.MaxInt64); !errors.ErrOverflow.Is(err) {
		t.Fatalf("want overflow error, got %+v", err)
	}
}

func TestControllerListPools(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()

	first := storePool(t, db, &Pool{
		Name:      "first",
		Kind:      PoolKindDataset,
		Creator:   markettestAddress(1),
		Active:    true,
		CreatedAt: 1600000000,
	})
	second := storePool(t, db, &Pool{
		Name:      "second",
		Kind:      PoolKindStream,
		Creator:   markettestAddress(2),
		Active:    true,
		CreatedAt: 1600000000,
	})

	pools, err := ctrl.ListPools(db)
	if err != nil {
		t.Fatalf("cannot list pools: %+v", err)
	}
	assert.Equal(t, 2, len(pools))
	assert.Equal(t, first, pools[0].PoolID)
	assert.Equal(t, "first", pools[0].Pool.Name)
	assert.Equal(t, second, pools[1].PoolID)
	assert.Equal(t, "second", pools[1].Pool.Name)
}

func storePool(t *testing.T, db datamarket.KVStore, pool *Pool) []byte {
	t.Helper()
	key, err := NewPoolBucket().Put(db, nil, pool)
	if err != nil {
		t.Fatalf("cannot store pool: %+v", err)
	}
	return key
}

func storeContribution(t *testing.T, db datamarket.KVStore, user datamarket.Address, poolID []byte) {
	t.Helper()
	_, err := NewContributionBucket().Put(db, nil, &Contribution{
		User:      user,
		PoolID:    poolID,
		DataHash:  []byte("6fa1c3"),
		Timestamp: 1600000000,
		Shares:    1,
	})
	if err != nil {
		t.Fatalf("cannot store contribution: %+v", err)
	}
}

func markettestAddress(n byte) datamarket.Address {
	addr := make(datamarket.Address, datamarket.AddressLength)
	addr[datamarket.AddressLength-1] = n
	return addr
}
