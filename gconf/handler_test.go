package gconf

import (
	"context"
	"testing"

	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
	"github.com/openpool/datamarket/markettest"
	"github.com/openpool/datamarket/store"
)

type updateTestConfigMsg struct {
	markettest.Msg
	Patch *testConfig
}

func TestUpdateConfigurationHandler(t *testing.T) {
	ownerCond := markettest.NewCondition()
	strangerCond := markettest.NewCondition()

	cases := map[string]struct {
		init      *testConfig
		signer    datamarket.Condition
		msg       *updateTestConfigMsg
		wantErr   *errors.Error
		wantName  string
		wantLimit int64
	}{
		"owner can update": {
			init:      &testConfig{Owner: ownerCond.Address(), Name: "alpha", Limit: 1},
			signer:    ownerCond,
			msg:       &updateTestConfigMsg{Patch: &testConfig{Limit: 9}},
			wantName:  "alpha",
			wantLimit: 9,
		},
		"zero fields are not patched": {
			init:      &testConfig{Owner: ownerCond.Address(), Name: "alpha", Limit: 1},
			signer:    ownerCond,
			msg:       &updateTestConfigMsg{Patch: &testConfig{Name: "beta"}},
			wantName:  "beta",
			wantLimit: 1,
		},
		"stranger cannot update": {
			init:    &testConfig{Owner: ownerCond.Address(), Name: "alpha", Limit: 1},
			signer:  strangerCond,
			msg:     &updateTestConfigMsg{Patch: &testConfig{Limit: 9}},
			wantErr: errors.ErrUnauthorized,
		},
		"invalid patch is rejected": {
			init:    &testConfig{Owner: ownerCond.Address(), Name: "alpha", Limit: 1},
			signer:  ownerCond,
			msg:     &updateTestConfigMsg{Patch: &testConfig{Limit: -2}},
			wantErr: errors.ErrInput,
		},
		"missing patch is rejected": {
			init:    &testConfig{Owner: ownerCond.Address(), Name: "alpha", Limit: 1},
			signer:  ownerCond,
			msg:     &updateTestConfigMsg{},
			wantErr: errors.ErrState,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "testpkg", tc.init); err != nil {
				t.Fatalf("cannot save initial configuration: %+v", err)
			}

			auth := &markettest.CtxAuth{Key: "auth"}
			ctx := auth.SetConditions(context.Background(), tc.signer)

			h := NewUpdateConfigurationHandler("testpkg", &testConfig{}, auth)
			tx := &markettest.Tx{Msg: tc.msg}
			_, err := h.Deliver(ctx, db, tx)
			if tc.wantErr != nil {
				if !tc.wantErr.Is(err) {
					t.Fatalf("want %q, got %+v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("cannot deliver: %+v", err)
			}

			var got testConfig
			if err := Load(db, "testpkg", &got); err != nil {
				t.Fatalf("cannot load: %+v", err)
			}
			if got.Name != tc.wantName || got.Limit != tc.wantLimit {
				t.Fatalf("unexpected configuration: %+v", got)
			}
		})
	}
}
