package revenue

import (
	datamarket "github.com/openpool/datamarket"
)

// SharesByUser returns all revenue shares earned by given user, claimed
// included, oldest first.
func SharesByUser(db datamarket.ReadOnlyKVStore, user datamarket.Address) ([]*Share, error) {
	var shares []*Share
	if _, err := NewShareBucket().ByIndex(db, "user", user, &shares); err != nil {
		return nil, err
	}
	return shares, nil
}

// PurchasesByPool returns all purchases made for given pool, oldest first.
func PurchasesByPool(db datamarket.ReadOnlyKVStore, poolID []byte) ([]*Purchase, error) {
	var purchases []*Purchase
	if _, err := NewPurchaseBucket().ByIndex(db, "pool", poolID, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}
