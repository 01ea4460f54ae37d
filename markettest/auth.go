package markettest

import (
	"context"
	"fmt"

	datamarket "github.com/openpool/datamarket"
)

// Auth is a mock implementing the x.Authenticator interface.
//
// This structure authenticates any of the referenced conditions. You can use
// either Signer or Signers (or both) attributes to reference conditions.
// Each time all signers, regardless of the attribute, are considered.
type Auth struct {
	// Signer represents an authentication of a single signer. This is a
	// convenience attribute when a single signer is enough.
	Signer datamarket.Condition

	// Signers represents an authentication of multiple signers.
	Signers []datamarket.Condition
}

func (a *Auth) GetConditions(datamarket.Context) []datamarket.Condition {
	if a.Signer != nil {
		return append(a.Signers, a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx datamarket.Context, addr datamarket.Address) bool {
	for _, s := range a.Signers {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	if a.Signer == nil {
		return false
	}
	return addr.Equals(a.Signer.Address())
}

// CtxAuth is a mock implementing the x.Authenticator interface.
//
// This implementation is using the context to store and retrieve
// permissions.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context. For
	// convenience only string type keys are allowed.
	Key string
}

type ctxAuthKey string

func (a *CtxAuth) SetConditions(ctx datamarket.Context, permissions ...datamarket.Condition) datamarket.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), permissions)
}

func (a *CtxAuth) GetConditions(ctx datamarket.Context) []datamarket.Condition {
	val := ctx.Value(ctxAuthKey(a.Key))
	if val == nil {
		return nil
	}
	conds, ok := val.([]datamarket.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []datamarket.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx datamarket.Context, addr datamarket.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
