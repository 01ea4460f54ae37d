package datapool

import (
	"github.com/openpool/datamarket/errors"
	"github.com/openpool/datamarket/orm"
)

var _ orm.Model = (*Pool)(nil)
var _ orm.Model = (*Contribution)(nil)

// Validate ensures the Pool is valid.
func (p *Pool) Validate() error {
	if p.Name == "" {
		return errors.Wrap(errors.ErrModel, "name is required")
	}
	if len(p.Name) > maxNameSize {
		return errors.Wrapf(errors.ErrModel, "name longer than %d characters", maxNameSize)
	}
	if len(p.Description) > maxDescriptionSize {
		return errors.Wrapf(errors.ErrModel, "description longer than %d characters", maxDescriptionSize)
	}
	if err := validateKind(p.Kind); err != nil {
		return err
	}
	if err := p.Creator.Validate(); err != nil {
		return errors.Wrap(err, "creator")
	}
	if p.TotalRevenue < 0 {
		return errors.Wrap(errors.ErrModel, "negative total revenue")
	}
	if p.CreatedAt == 0 {
		return errors.Wrap(errors.ErrModel, "created at is required")
	}
	return p.CreatedAt.Validate()
}

// Validate ensures the Contribution is valid.
func (c *Contribution) Validate() error {
	if err := c.User.Validate(); err != nil {
		return errors.Wrap(err, "user")
	}
	if len(c.PoolID) == 0 {
		return errors.Wrap(errors.ErrModel, "pool id is required")
	}
	if len(c.DataHash) == 0 {
		return errors.Wrap(errors.ErrModel, "data hash is required")
	}
	if c.Shares == 0 {
		return errors.Wrap(errors.ErrModel, "shares must be positive")
	}
	if c.Timestamp == 0 {
		return errors.Wrap(errors.ErrModel, "timestamp is required")
	}
	return c.Timestamp.Validate()
}

// Validate ensures the Configuration is valid.
func (c *Configuration) Validate() error {
	if err := c.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return nil
}

// NewPoolBucket returns a bucket for keeping track of pools. Pool ids are
// assigned by a bucket sequence, so they never collide.
func NewPoolBucket() orm.ModelBucket {
	return orm.NewModelBucket("pool", &Pool{},
		orm.WithIDSequence(orm.NewSequence("pool", "id")),
	)
}

// NewContributionBucket returns a bucket for keeping track of contributions.
// Contributions are indexed by the contributing user and by the pool.
func NewContributionBucket() orm.ModelBucket {
	return orm.NewModelBucket("contrib", &Contribution{},
		orm.WithIDSequence(orm.NewSequence("contrib", "id")),
		orm.WithIndex("user", idxContribUser, false),
		orm.WithIndex("pool", idxContribPool, false),
	)
}

func toContribution(m orm.Model) (*Contribution, error) {
	c, ok := m.(*Contribution)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T is not a contribution", m)
	}
	return c, nil
}

func idxContribUser(m orm.Model) ([]byte, error) {
	c, err := toContribution(m)
	if err != nil {
		return nil, err
	}
	return c.User, nil
}

func idxContribPool(m orm.Model) ([]byte, error) {
	c, err := toContribution(m)
	if err != nil {
		return nil, err
	}
	return c.PoolID, nil
}
