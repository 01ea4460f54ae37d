/*
Package x holds the interfaces shared by all marketplace extensions.

Extensions never inspect the transaction signatures themselves. They receive
an Authenticator and ask it which conditions the current context fulfills.
This keeps the authentication system pluggable, test doubles included.
*/
package x

import (
	datamarket "github.com/openpool/datamarket"
)

// Authenticator extracts authentication info from the context. It should be
// passed into the constructor of handlers, so another authentication system
// can be plugged in without touching extension code.
type Authenticator interface {
	// GetConditions reveals all conditions fulfilled by the context.
	GetConditions(datamarket.Context) []datamarket.Condition
	// HasAddress checks if any condition matches this address.
	HasAddress(datamarket.Context, datamarket.Address) bool
}

// MultiAuth chains together many Authenticators into one.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticators.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines the conditions of all chained Authenticators.
func (m MultiAuth) GetConditions(ctx datamarket.Context) []datamarket.Condition {
	var res []datamarket.Condition
	for _, impl := range m.impls {
		if add := impl.GetConditions(ctx); len(add) > 0 {
			res = append(res, add...)
		}
	}
	return res
}

// HasAddress returns true if any chained Authenticator fulfills the address.
func (m MultiAuth) HasAddress(ctx datamarket.Context, addr datamarket.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first condition if any, otherwise nil.
func MainSigner(ctx datamarket.Context, auth Authenticator) datamarket.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllAddresses returns true if all required addresses are fulfilled by
// the context.
func HasAllAddresses(ctx datamarket.Context, auth Authenticator, required []datamarket.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

// HasAllConditions returns true if all required conditions are fulfilled by
// the context.
func HasAllConditions(ctx datamarket.Context, auth Authenticator, required []datamarket.Condition) bool {
	perms := auth.GetConditions(ctx)
	for _, req := range required {
		if !hasPerm(perms, req) {
			return false
		}
	}
	return true
}

func hasPerm(perms []datamarket.Condition, perm datamarket.Condition) bool {
	for _, p := range perms {
		if p.Equals(perm) {
			return true
		}
	}
	return false
}
