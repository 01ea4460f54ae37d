/*
Package datapool implements the pool registry and the contribution ledger.

Users create named pools and contribute data into them. Every contribution
is an append-only record carrying a share weight, used by the revenue
extension to apportion purchase payments among contributors.
*/
package datapool
