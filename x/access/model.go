package access

import (
	"github.com/openpool/datamarket/errors"
	"github.com/openpool/datamarket/orm"
)

var _ orm.Model = (*Grant)(nil)

// Validate ensures the Grant is valid.
func (g *Grant) Validate() error {
	if err := g.Buyer.Validate(); err != nil {
		return errors.Wrap(err, "buyer")
	}
	if len(g.PoolID) == 0 {
		return errors.Wrap(errors.ErrModel, "pool id is required")
	}
	if g.GrantedAt == 0 {
		return errors.Wrap(errors.ErrModel, "granted at is required")
	}
	if g.ExpiresAt <= g.GrantedAt {
		return errors.Wrap(errors.ErrModel, "expiration must be after grant time")
	}
	if g.Token == "" {
		return errors.Wrap(errors.ErrModel, "token is required")
	}
	return nil
}

// NewGrantBucket returns a bucket for keeping track of access grants,
// indexed by the buyer.
func NewGrantBucket() orm.ModelBucket {
	return orm.NewModelBucket("grant", &Grant{},
		orm.WithIndex("buyer", idxGrantBuyer, false),
	)
}

func idxGrantBuyer(m orm.Model) ([]byte, error) {
	g, ok := m.(*Grant)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T is not a grant", m)
	}
	return g.Buyer, nil
}
