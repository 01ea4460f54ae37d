package x

import (
	"context"
	"testing"

	datamarket "github.com/openpool/datamarket"
)

// fixedAuth authenticates a static list of conditions, ignoring the context.
type fixedAuth struct {
	perms []datamarket.Condition
}

func (a fixedAuth) GetConditions(datamarket.Context) []datamarket.Condition {
	return a.perms
}

func (a fixedAuth) HasAddress(_ datamarket.Context, addr datamarket.Address) bool {
	for _, p := range a.perms {
		if p.Address().Equals(addr) {
			return true
		}
	}
	return false
}

func TestAuth(t *testing.T) {
	a := datamarket.NewCondition("sigs", "ed25519", []byte{1, 2, 3})
	b := datamarket.NewCondition("sigs", "ed25519", []byte{3, 4, 5})
	c := datamarket.NewCondition("custom", "type", []byte{0xab})

	ctx := context.Background()

	cases := map[string]struct {
		auth        Authenticator
		mainSigner  datamarket.Condition
		has         []datamarket.Address
		notHas      []datamarket.Address
		all         []datamarket.Condition
		notAll      []datamarket.Condition
		conditions  int
	}{
		"empty authentication": {
			auth:       fixedAuth{},
			notHas:     []datamarket.Address{a.Address(), b.Address()},
			notAll:     []datamarket.Condition{a},
			conditions: 0,
		},
		"single condition": {
			auth:       fixedAuth{perms: []datamarket.Condition{a}},
			mainSigner: a,
			has:        []datamarket.Address{a.Address()},
			notHas:     []datamarket.Address{b.Address()},
			all:        []datamarket.Condition{a},
			notAll:     []datamarket.Condition{a, b},
			conditions: 1,
		},
		"chained authenticators": {
			auth:       ChainAuth(fixedAuth{perms: []datamarket.Condition{a}}, fixedAuth{perms: []datamarket.Condition{b, c}}),
			mainSigner: a,
			has:        []datamarket.Address{a.Address(), b.Address(), c.Address()},
			all:        []datamarket.Condition{a, b, c},
			conditions: 3,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := MainSigner(ctx, tc.auth); !got.Equals(tc.mainSigner) {
				t.Fatalf("unexpected main signer: %s", got)
			}
			for _, addr := range tc.has {
				if !tc.auth.HasAddress(ctx, addr) {
					t.Fatalf("address %s must be authenticated", addr)
				}
			}
			for _, addr := range tc.notHas {
				if tc.auth.HasAddress(ctx, addr) {
					t.Fatalf("address %s must not be authenticated", addr)
				}
			}
			if !HasAllAddresses(ctx, tc.auth, tc.has) {
				t.Fatal("all addresses must be authenticated")
			}
			if len(tc.all) != 0 && !HasAllConditions(ctx, tc.auth, tc.all) {
				t.Fatal("all conditions must be authenticated")
			}
			if len(tc.notAll) != 0 && HasAllConditions(ctx, tc.auth, tc.notAll) {
				t.Fatal("conditions must not be authenticated")
			}
			if got := len(tc.auth.GetConditions(ctx)); got != tc.conditions {
				t.Fatalf("unexpected number of conditions: %d", got)
			}
		})
	}
}
