package revenue

import (
	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
)

const (
	pathPurchaseAccess      = "revenue/purchase"
	pathClaimRevenue        = "revenue/claim"
	pathUpdateConfiguration = "revenue/update_config"
)

var _ datamarket.Msg = (*PurchaseAccessMsg)(nil)
var _ datamarket.Msg = (*ClaimRevenueMsg)(nil)
var _ datamarket.Msg = (*UpdateConfigurationMsg)(nil)

func (PurchaseAccessMsg) Path() string {
	return pathPurchaseAccess
}

func (ClaimRevenueMsg) Path() string {
	return pathClaimRevenue
}

func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfiguration
}

func (m *PurchaseAccessMsg) Validate() error {
	if err := m.Buyer.Validate(); err != nil {
		return errors.Wrap(err, "buyer")
	}
	if len(m.PoolID) == 0 {
		return errors.Wrap(errors.ErrInput, "pool id is required")
	}
	if m.Amount <= 0 {
		return errors.Wrap(errors.ErrInput, "amount must be positive")
	}
	if m.Duration <= 0 {
		return errors.Wrap(errors.ErrInput, "duration must be positive")
	}
	return nil
}

func (m *ClaimRevenueMsg) Validate() error {
	if err := m.User.Validate(); err != nil {
		return errors.Wrap(err, "user")
	}
	return nil
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrInput, "patch is required")
	}
	return nil
}
