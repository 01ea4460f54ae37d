package datamarket

import (
	"math"
	"testing"

	"github.com/openpool/datamarket/errors"
)

func TestCheckedAdd(t *testing.T) {
	cases := map[string]struct {
		a, b    int64
		want    int64
		wantErr *errors.Error
	}{
		"plain sum":          {a: 2, b: 3, want: 5},
		"negative operand":   {a: 10, b: -4, want: 6},
		"at the upper bound": {a: math.MaxInt64 - 1, b: 1, want: math.MaxInt64},
		"overflow":           {a: math.MaxInt64, b: 1, wantErr: errors.ErrOverflow},
		"underflow":          {a: math.MinInt64, b: -1, wantErr: errors.ErrOverflow},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := CheckedAdd(tc.a, tc.b)
			if tc.wantErr != nil {
				if !tc.wantErr.Is(err) {
					t.Fatalf("want %q, got %+v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}
			if got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}
