package revenue

import (
	"context"
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/app"
	"github.com/openpool/datamarket/errors"
	"github.com/openpool/datamarket/gconf"
	"github.com/openpool/datamarket/markettest"
	"github.com/openpool/datamarket/markettest/assert"
	"github.com/openpool/datamarket/store"
	"github.com/openpool/datamarket/x/access"
	"github.com/openpool/datamarket/x/datapool"
)

var (
	adminCond   = markettest.NewCondition()
	creatorCond = markettest.NewCondition()
	aliceCond   = markettest.NewCondition()
	bobCond     = markettest.NewCondition()
	buyerCond   = markettest.NewCondition()

	now = time.Unix(1600000000, 0)
)

// seqSource produces predictable grant ids and tokens.
type seqSource struct {
	n uint64
}

func (s *seqSource) GrantID() ([]byte, error) {
	s.n++
	return markettest.SequenceID(s.n), nil
}

func (s *seqSource) Token() (string, error) {
	return fmt.Sprintf("token-%d", s.n), nil
}

// newTestEnv returns a routed handler over a fresh store with both the
// datapool and the revenue extension registered, the fee configured and one
// active pool created.
func newTestEnv(t *testing.T, feeBps uint32) (datamarket.Handler, datamarket.CacheableKVStore, []byte) {
	t.Helper()

	db := store.MemStore()
	if err := gconf.Save(db, "datapool", &datapool.Configuration{Owner: adminCond.Address()}); err != nil {
		t.Fatalf("cannot save datapool configuration: %+v", err)
	}
	if err := gconf.Save(db, "revenue", &Configuration{Owner: adminCond.Address(), FeeBps: feeBps}); err != nil {
		t.Fatalf("cannot save revenue configuration: %+v", err)
	}

	auth := &markettest.CtxAuth{Key: "auth"}
	rt := app.NewRouter()
	datapool.RegisterRoutes(rt, auth)
	RegisterRoutes(rt, auth, datapool.NewController(), access.NewIssuer(&seqSource{}))

	res, err := rt.Deliver(withSigners(creatorCond), db, &markettest.Tx{Msg: &datapool.CreatePoolMsg{
		Creator: creatorCond.Address(),
		Name:    "weather data",
		Kind:    datapool.PoolKindDataset,
	}})
	if err != nil {
		t.Fatalf("cannot create pool: %+v", err)
	}
	return rt, db, res.Data
}

func withSigners(conds ...datamarket.Condition) datamarket.Context {
	auth := &markettest.CtxAuth{Key: "auth"}
	ctx := datamarket.WithBlockTime(context.Background(), now)
	return auth.SetConditions(ctx, conds...)
}

func contribute(t *testing.T, rt datamarket.Handler, db datamarket.KVStore, poolID []byte, user datamarket.Condition) {
	t.Helper()
	_, err := rt.Deliver(withSigners(user), db, &markettest.Tx{Msg: &datapool.ContributeMsg{
		User:     user.Address(),
		PoolID:   poolID,
		DataHash: []byte("6fa1c3"),
	}})
	if err != nil {
		t.Fatalf("cannot contribute: %+v", err)
	}
}

func purchase(t *testing.T, rt datamarket.Handler, db datamarket.KVStore, poolID []byte, amount int64) *datamarket.DeliverResult {
	t.Helper()
	res, err := rt.Deliver(withSigners(buyerCond), db, &markettest.Tx{Msg: &PurchaseAccessMsg{
		Buyer:    buyerCond.Address(),
		PoolID:   poolID,
		Amount:   amount,
		Duration: datamarket.AsUnixDuration(time.Hour),
	}})
	if err != nil {
		t.Fatalf("cannot purchase: %+v", err)
	}
	return res
}

func unclaimedOf(t *testing.T, db datamarket.KVStore, user datamarket.Address) int64 {
	t.Helper()
	shares, err := SharesByUser(db, user)
	if err != nil {
		t.Fatalf("cannot list shares: %+v", err)
	}
	var total int64
	for _, s := range shares {
		if !s.Claimed {
			total += s.Amount
		}
	}
	return total
}

func TestPurchaseDistributesRevenue(t *testing.T) {
	rt, db, poolID := newTestEnv(t, 500)
	contribute(t, rt, db, poolID, aliceCond)
	contribute(t, rt, db, poolID, bobCond)

	res := purchase(t, rt, db, poolID, 1000)

	// The grant id of the issued access grant is returned.
	assert.Equal(t, markettest.SequenceID(1), res.Data)

	// 1000 minus the 5% fee is 950, split into two equal halves.
	assert.Equal(t, int64(475), unclaimedOf(t, db, aliceCond.Address()))
	assert.Equal(t, int64(475), unclaimedOf(t, db, bobCond.Address()))

	var p Purchase
	if err := NewPurchaseBucket().One(db, markettest.SequenceID(1), &p); err != nil {
		t.Fatalf("cannot load purchase: %+v", err)
	}
	assert.Equal(t, buyerCond.Address(), p.Buyer)
	assert.Equal(t, int64(1000), p.Amount)
	assert.Equal(t, datamarket.AsUnixTime(now), p.Timestamp)
	assert.Equal(t, datamarket.AsUnixTime(now).Add(time.Hour), p.AccessExpiry)

	// The pool accounts the gross amount, fee included.
	pool, err := datapool.NewController().Pool(db, poolID)
	if err != nil {
		t.Fatalf("cannot load pool: %+v", err)
	}
	assert.Equal(t, int64(1000), pool.TotalRevenue)

	// The buyer holds exactly one active grant.
	grants, err := access.NewIssuer(nil).ListActive(db, buyerCond.Address(), datamarket.AsUnixTime(now))
	if err != nil {
		t.Fatalf("cannot list grants: %+v", err)
	}
	assert.Equal(t, 1, len(grants))
	assert.Equal(t, datamarket.AsUnixTime(now).Add(time.Hour), grants[0].ExpiresAt)
}

func TestPurchaseWeightsByShares(t *testing.T) {
	rt, db, poolID := newTestEnv(t, 0)
	// Alice contributes twice, so she owns two of three share units.
	contribute(t, rt, db, poolID, aliceCond)
	contribute(t, rt, db, poolID, aliceCond)
	contribute(t, rt, db, poolID, bobCond)

	purchase(t, rt, db, poolID, 1000)

	assert.Equal(t, int64(666), unclaimedOf(t, db, aliceCond.Address()))
	assert.Equal(t, int64(333), unclaimedOf(t, db, bobCond.Address()))
	// The single undistributed unit stays with the marketplace.
}

func TestPurchaseWithoutContributors(t *testing.T) {
	rt, db, poolID := newTestEnv(t, 0)

	purchase(t, rt, db, poolID, 1000)

	// No shares were created but the revenue is still accounted.
	pool, err := datapool.NewController().Pool(db, poolID)
	if err != nil {
		t.Fatalf("cannot load pool: %+v", err)
	}
	assert.Equal(t, int64(1000), pool.TotalRevenue)

	shares, err := SharesByUser(db, aliceCond.Address())
	if err != nil {
		t.Fatalf("cannot list shares: %+v", err)
	}
	assert.Equal(t, 0, len(shares))

	// The purchase record is still written.
	purchases, err := PurchasesByPool(db, poolID)
	if err != nil {
		t.Fatalf("cannot list purchases: %+v", err)
	}
	assert.Equal(t, 1, len(purchases))
}

func TestPurchaseZeroPayoutsGetNoRecord(t *testing.T) {
	rt, db, poolID := newTestEnv(t, 0)
	contribute(t, rt, db, poolID, aliceCond)
	contribute(t, rt, db, poolID, bobCond)

	// One unit split two ways rounds both payouts down to zero.
	purchase(t, rt, db, poolID, 1)

	shares, err := SharesByUser(db, aliceCond.Address())
	if err != nil {
		t.Fatalf("cannot list shares: %+v", err)
	}
	assert.Equal(t, 0, len(shares))
}

func TestPurchaseGuards(t *testing.T) {
	rt, db, poolID := newTestEnv(t, 500)

	if _, err := rt.Deliver(withSigners(creatorCond), db, &markettest.Tx{Msg: &datapool.DeactivatePoolMsg{
		PoolID: poolID,
	}}); err != nil {
		t.Fatalf("cannot deactivate: %+v", err)
	}

	cases := map[string]struct {
		signer  datamarket.Condition
		msg     *PurchaseAccessMsg
		wantErr *errors.Error
	}{
		"unknown pool": {
			signer: buyerCond,
			msg: &PurchaseAccessMsg{
				Buyer:    buyerCond.Address(),
				PoolID:   markettest.SequenceID(666),
				Amount:   1000,
				Duration: datamarket.AsUnixDuration(time.Hour),
			},
			wantErr: errors.ErrNotFound,
		},
		"buyer signature required": {
			signer: aliceCond,
			msg: &PurchaseAccessMsg{
				Buyer:    buyerCond.Address(),
				PoolID:   poolID,
				Amount:   1000,
				Duration: datamarket.AsUnixDuration(time.Hour),
			},
			wantErr: errors.ErrUnauthorized,
		},
		"inactive pool": {
			signer: buyerCond,
			msg: &PurchaseAccessMsg{
				Buyer:    buyerCond.Address(),
				PoolID:   poolID,
				Amount:   1000,
				Duration: datamarket.AsUnixDuration(time.Hour),
			},
			wantErr: errors.ErrState,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := rt.Deliver(withSigners(tc.signer), db, &markettest.Tx{Msg: tc.msg})
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %q, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestClaimRevenue(t *testing.T) {
	rt, db, poolID := newTestEnv(t, 500)
	contribute(t, rt, db, poolID, aliceCond)
	contribute(t, rt, db, poolID, bobCond)
	purchase(t, rt, db, poolID, 1000)

	res, err := rt.Deliver(withSigners(aliceCond), db, &markettest.Tx{Msg: &ClaimRevenueMsg{
		User: aliceCond.Address(),
	}})
	if err != nil {
		t.Fatalf("cannot claim: %+v", err)
	}
	assert.Equal(t, int64(475), int64(binary.BigEndian.Uint64(res.Data)))
	assert.Equal(t, int64(0), unclaimedOf(t, db, aliceCond.Address()))

	// A second claim has nothing left to settle.
	_, err = rt.Deliver(withSigners(aliceCond), db, &markettest.Tx{Msg: &ClaimRevenueMsg{
		User: aliceCond.Address(),
	}})
	if !ErrNothingToClaim.Is(err) {
		t.Fatalf("want nothing to claim, got %+v", err)
	}

	// Bob's earnings are untouched by Alice's claim.
	assert.Equal(t, int64(475), unclaimedOf(t, db, bobCond.Address()))
}

func TestClaimCollectsAcrossPurchases(t *testing.T) {
	rt, db, poolID := newTestEnv(t, 0)
	contribute(t, rt, db, poolID, aliceCond)

	purchase(t, rt, db, poolID, 300)
	purchase(t, rt, db, poolID, 200)

	res, err := rt.Deliver(withSigners(aliceCond), db, &markettest.Tx{Msg: &ClaimRevenueMsg{
		User: aliceCond.Address(),
	}})
	if err != nil {
		t.Fatalf("cannot claim: %+v", err)
	}
	assert.Equal(t, int64(500), int64(binary.BigEndian.Uint64(res.Data)))
}

func TestClaimRequiresUserSignature(t *testing.T) {
	rt, db, poolID := newTestEnv(t, 0)
	contribute(t, rt, db, poolID, aliceCond)
	purchase(t, rt, db, poolID, 1000)

	_, err := rt.Deliver(withSigners(bobCond), db, &markettest.Tx{Msg: &ClaimRevenueMsg{
		User: aliceCond.Address(),
	}})
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want unauthorized, got %+v", err)
	}
}

func TestClaimWithoutEarnings(t *testing.T) {
	rt, db, _ := newTestEnv(t, 0)

	_, err := rt.Deliver(withSigners(aliceCond), db, &markettest.Tx{Msg: &ClaimRevenueMsg{
		User: aliceCond.Address(),
	}})
	if !ErrNothingToClaim.Is(err) {
		t.Fatalf("want nothing to claim, got %+v", err)
	}
}

func TestUpdateFeeConfiguration(t *testing.T) {
	rt, db, _ := newTestEnv(t, 500)

	// The owner may raise the fee up to the cap.
	if _, err := rt.Deliver(withSigners(adminCond), db, &markettest.Tx{Msg: &UpdateConfigurationMsg{
		Patch: &Configuration{Owner: adminCond.Address(), FeeBps: 1000},
	}}); err != nil {
		t.Fatalf("cannot update configuration: %+v", err)
	}
	var conf Configuration
	if err := gconf.Load(db, "revenue", &conf); err != nil {
		t.Fatalf("cannot load configuration: %+v", err)
	}
	assert.Equal(t, uint32(1000), conf.FeeBps)

	// A fee above the cap is rejected.
	_, err := rt.Deliver(withSigners(adminCond), db, &markettest.Tx{Msg: &UpdateConfigurationMsg{
		Patch: &Configuration{Owner: adminCond.Address(), FeeBps: 1001},
	}})
	if !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %+v", err)
	}

	// Only the owner may change the fee.
	_, err = rt.Deliver(withSigners(aliceCond), db, &markettest.Tx{Msg: &UpdateConfigurationMsg{
		Patch: &Configuration{Owner: adminCond.Address(), FeeBps: 100},
	}})
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want unauthorized, got %+v", err)
	}
}
