package revenue

import (
	"github.com/openpool/datamarket/errors"
	"github.com/openpool/datamarket/orm"
)

// maxFeeBps caps the marketplace fee at 10% of the purchase amount.
const maxFeeBps = 1000

var _ orm.Model = (*Purchase)(nil)
var _ orm.Model = (*Share)(nil)
var _ orm.Model = (*Configuration)(nil)

// Validate ensures the Purchase is valid.
func (p *Purchase) Validate() error {
	if err := p.Buyer.Validate(); err != nil {
		return errors.Wrap(err, "buyer")
	}
	if len(p.PoolID) == 0 {
		return errors.Wrap(errors.ErrModel, "pool id is required")
	}
	if p.Amount <= 0 {
		return errors.Wrap(errors.ErrModel, "amount must be positive")
	}
	if p.Timestamp == 0 {
		return errors.Wrap(errors.ErrModel, "timestamp is required")
	}
	if p.AccessExpiry <= p.Timestamp {
		return errors.Wrap(errors.ErrModel, "access expiry must be after purchase time")
	}
	return p.Timestamp.Validate()
}

// Validate ensures the Share is valid.
func (s *Share) Validate() error {
	if err := s.User.Validate(); err != nil {
		return errors.Wrap(err, "user")
	}
	if len(s.PoolID) == 0 {
		return errors.Wrap(errors.ErrModel, "pool id is required")
	}
	if s.Amount <= 0 {
		return errors.Wrap(errors.ErrModel, "amount must be positive")
	}
	if s.Timestamp == 0 {
		return errors.Wrap(errors.ErrModel, "timestamp is required")
	}
	return s.Timestamp.Validate()
}

// Validate ensures the Configuration is valid.
func (c *Configuration) Validate() error {
	if err := c.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if c.FeeBps > maxFeeBps {
		return errors.Wrapf(errors.ErrInput, "fee above %d basis points", maxFeeBps)
	}
	return nil
}

// NewPurchaseBucket returns a bucket for keeping purchase records. Records
// are indexed by the buyer and by the pool they paid for.
func NewPurchaseBucket() orm.ModelBucket {
	return orm.NewModelBucket("purchase", &Purchase{},
		orm.WithIDSequence(orm.NewSequence("purchase", "id")),
		orm.WithIndex("buyer", idxPurchaseBuyer, false),
		orm.WithIndex("pool", idxPurchasePool, false),
	)
}

func idxPurchaseBuyer(obj orm.Model) ([]byte, error) {
	p, err := toPurchase(obj)
	if err != nil {
		return nil, err
	}
	return p.Buyer, nil
}

func idxPurchasePool(obj orm.Model) ([]byte, error) {
	p, err := toPurchase(obj)
	if err != nil {
		return nil, err
	}
	return p.PoolID, nil
}

func toPurchase(obj orm.Model) (*Purchase, error) {
	p, ok := obj.(*Purchase)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T is not a purchase", obj)
	}
	return p, nil
}

// NewShareBucket returns a bucket for keeping revenue shares. Shares are
// indexed by the earning user so that a claim can collect them all.
func NewShareBucket() orm.ModelBucket {
	return orm.NewModelBucket("share", &Share{},
		orm.WithIDSequence(orm.NewSequence("share", "id")),
		orm.WithIndex("user", idxShareUser, false),
	)
}

func idxShareUser(obj orm.Model) ([]byte, error) {
	s, ok := obj.(*Share)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T is not a share", obj)
	}
	return s.User, nil
}
