package datapool

import (
	datamarket "github.com/openpool/datamarket"
	"github.com/openpool/datamarket/errors"
)

const (
	pathCreatePool          = "datapool/create"
	pathDeactivatePool      = "datapool/deactivate"
	pathContribute          = "datapool/contribute"
	pathUpdateConfiguration = "datapool/update_config"

	maxNameSize        = 128
	maxDescriptionSize = 1024
	maxDataHashSize    = 64
)

var _ datamarket.Msg = (*CreatePoolMsg)(nil)
var _ datamarket.Msg = (*DeactivatePoolMsg)(nil)
var _ datamarket.Msg = (*ContributeMsg)(nil)
var _ datamarket.Msg = (*UpdateConfigurationMsg)(nil)

func (CreatePoolMsg) Path() string {
	return pathCreatePool
}

func (DeactivatePoolMsg) Path() string {
	return pathDeactivatePool
}

func (ContributeMsg) Path() string {
	return pathContribute
}

func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfiguration
}

func (m *CreatePoolMsg) Validate() error {
	if err := m.Creator.Validate(); err != nil {
		return errors.Wrap(err, "creator")
	}
	if m.Name == "" {
		return errors.Wrap(errors.ErrInput, "name is required")
	}
	if len(m.Name) > maxNameSize {
		return errors.Wrapf(errors.ErrInput, "name longer than %d characters", maxNameSize)
	}
	if len(m.Description) > maxDescriptionSize {
		return errors.Wrapf(errors.ErrInput, "description longer than %d characters", maxDescriptionSize)
	}
	return validateKind(m.Kind)
}

func (m *DeactivatePoolMsg) Validate() error {
	if len(m.PoolID) == 0 {
		return errors.Wrap(errors.ErrInput, "pool id is required")
	}
	return nil
}

func (m *ContributeMsg) Validate() error {
	if err := m.User.Validate(); err != nil {
		return errors.Wrap(err, "user")
	}
	if len(m.PoolID) == 0 {
		return errors.Wrap(errors.ErrInput, "pool id is required")
	}
	if len(m.DataHash) == 0 {
		return errors.Wrap(errors.ErrInput, "data hash is required")
	}
	if len(m.DataHash) > maxDataHashSize {
		return errors.Wrapf(errors.ErrInput, "data hash longer than %d bytes", maxDataHashSize)
	}
	return nil
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrInput, "patch is required")
	}
	return nil
}

func validateKind(kind PoolKind) error {
	if _, ok := poolKindName[kind]; !ok || kind == PoolKindUnspecified {
		return errors.Wrapf(errors.ErrInput, "invalid pool kind %d", kind)
	}
	return nil
}
