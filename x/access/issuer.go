package access

import (
	"github.com/google/uuid"
	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
	"github.com/openpool/datamarket/orm"
)

// TokenSource produces grant identifiers and opaque access tokens. It is
// injected so that tests can use a deterministic implementation.
type TokenSource interface {
	// GrantID returns a fresh, practically unique grant identifier.
	GrantID() ([]byte, error)
	// Token returns a fresh opaque access credential.
	Token() (string, error)
}

// UUIDSource is a TokenSource producing random UUIDs.
type UUIDSource struct{}

var _ TokenSource = UUIDSource{}

func (UUIDSource) GrantID() ([]byte, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return id[:], nil
}

func (UUIDSource) Token() (string, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return "", errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return token.String(), nil
}

// Issuer creates and lists access grants. It is consumed by the revenue
// extension when a purchase succeeds.
type Issuer struct {
	grants orm.ModelBucket
	source TokenSource
}

// NewIssuer returns an issuer drawing identifiers from the given source. A
// nil source means random UUIDs.
func NewIssuer(source TokenSource) *Issuer {
	if source == nil {
		source = UUIDSource{}
	}
	return &Issuer{
		grants: NewGrantBucket(),
		source: source,
	}
}

// Issue creates a grant valid from now until now plus duration and appends
// it to the buyer's grant list. The grant id is returned together with the
// grant.
func (i *Issuer) Issue(db datamarket.KVStore, now datamarket.UnixTime, buyer datamarket.Address, poolID []byte, duration datamarket.UnixDuration) ([]byte, *Grant, error) {
	grantID, err := i.source.GrantID()
	if err != nil {
		return nil, nil, errors.Wrap(err, "grant id")
	}
	token, err := i.source.Token()
	if err != nil {
		return nil, nil, errors.Wrap(err, "token")
	}

	grant := &Grant{
		Buyer:     buyer,
		PoolID:    poolID,
		GrantedAt: now,
		ExpiresAt: now.Add(duration.Duration()),
		Token:     token,
	}
	if _, err := i.grants.Put(db, grantID, grant); err != nil {
		return nil, nil, errors.Wrap(err, "cannot store grant")
	}
	return grantID, grant, nil
}

// ListByBuyer returns all grants of given buyer, expired included.
func (i *Issuer) ListByBuyer(db datamarket.ReadOnlyKVStore, buyer datamarket.Address) ([]*Grant, error) {
	var grants []*Grant
	if _, err := i.grants.ByIndex(db, "buyer", buyer, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

// ListActive returns the buyer's grants that are still valid at given time.
// A grant expiring exactly now is no longer valid. Expired grants stay in
// storage, they are only excluded from the result.
func (i *Issuer) ListActive(db datamarket.ReadOnlyKVStore, buyer datamarket.Address, now datamarket.UnixTime) ([]*Grant, error) {
	grants, err := i.ListByBuyer(db, buyer)
	if err != nil {
		return nil, err
	}
	active := make([]*Grant, 0, len(grants))
	for _, g := range grants {
		if now < g.ExpiresAt {
			active = append(active, g)
		}
	}
	return active, nil
}
