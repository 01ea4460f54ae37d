/*
Package errors implements custom error interfaces for the marketplace
engine.

The idea is to reuse as many errors from this package as possible and
define custom package errors only when absolutely necessary. Errors are
categorized by their root kind: every error created during runtime should
wrap one of the registered root errors. This allows matching an error
against its kind regardless of how many times it was wrapped with
additional context.
*/
package errors
