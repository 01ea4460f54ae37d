package datapool

import (
	"strings"
	"testing"

	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
	"github.com/openpool/datamarket/markettest"
)

func TestCreatePoolMsgValidate(t *testing.T) {
	creator := markettest.NewCondition().Address()

	cases := map[string]struct {
		msg     CreatePoolMsg
		wantErr *errors.Error
	}{
		"valid message": {
			msg: CreatePoolMsg{
				Creator:     creator,
				Name:        "weather data",
				Description: "hourly sensor readings",
				Kind:        PoolKindDataset,
			},
		},
		"missing creator": {
			msg: CreatePoolMsg{
				Name: "weather data",
				Kind: PoolKindDataset,
			},
			wantErr: errors.ErrEmpty,
		},
		"missing name": {
			msg: CreatePoolMsg{
				Creator: creator,
				Kind:    PoolKindDataset,
			},
			wantErr: errors.ErrInput,
		},
		"name too long": {
			msg: CreatePoolMsg{
				Creator: creator,
				Name:    strings.Repeat("x", maxNameSize+1),
				Kind:    PoolKindDataset,
			},
			wantErr: errors.ErrInput,
		},
		"description too long": {
			msg: CreatePoolMsg{
				Creator:     creator,
				Name:        "weather data",
				Description: strings.Repeat("x", maxDescriptionSize+1),
				Kind:        PoolKindDataset,
			},
			wantErr: errors.ErrInput,
		},
		"unknown kind": {
			msg: CreatePoolMsg{
				Creator: creator,
				Name:    "weather data",
				Kind:    PoolKind(66),
			},
			wantErr: errors.ErrInput,
		},
		"unspecified kind": {
			msg: CreatePoolMsg{
				Creator: creator,
				Name:    "weather data",
			},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %+v", err)
				}
			} else if !tc.wantErr.Is(err) {
				t.Fatalf("want %q, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestContributeMsgValidate(t *testing.T) {
	user := markettest.NewCondition().Address()

	cases := map[string]struct {
		msg     ContributeMsg
		wantErr *errors.Error
	}{
		"valid message": {
			msg: ContributeMsg{
				User:     user,
				PoolID:   markettest.SequenceID(1),
				DataHash: []byte("1c52fa4e2a2e4b2e"),
			},
		},
		"missing user": {
			msg: ContributeMsg{
				PoolID:   markettest.SequenceID(1),
				DataHash: []byte("1c52fa4e2a2e4b2e"),
			},
			wantErr: errors.ErrEmpty,
		},
		"missing pool id": {
			msg: ContributeMsg{
				User:     user,
				DataHash: []byte("1c52fa4e2a2e4b2e"),
			},
			wantErr: errors.ErrInput,
		},
		"missing data hash": {
			msg: ContributeMsg{
				User:   user,
				PoolID: markettest.SequenceID(1),
			},
			wantErr: errors.ErrInput,
		},
		"data hash too long": {
			msg: ContributeMsg{
				User:     user,
				PoolID:   markettest.SequenceID(1),
				DataHash: []byte(strings.Repeat("a", maxDataHashSize+1)),
			},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %+v", err)
				}
			} else if !tc.wantErr.Is(err) {
				t.Fatalf("want %q, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestMsgPaths(t *testing.T) {
	for _, msg := range []datamarket.Msg{
		&CreatePoolMsg{},
		&DeactivatePoolMsg{},
		&ContributeMsg{},
		&UpdateConfigurationMsg{},
	} {
		if path := msg.Path(); !strings.HasPrefix(path, "datapool/") {
			t.Fatalf("unexpected %T path: %q", msg, path)
		}
	}
}
