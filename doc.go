/*
Package datamarket defines all common interfaces that weave together the
data-contribution marketplace engine.

The root package contains only the kernel: key-value store abstractions,
addresses, message and handler contracts, time helpers and the context
accessors used to inject the current time into every operation. The
marketplace logic itself lives in extension packages under x/, each one
operating on typed buckets from the orm package.
*/
package datamarket
