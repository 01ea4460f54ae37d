/*
Package revenue implements purchase processing and claim settlement.

A purchase pays for time-bounded access to a pool. The payment, net of the
marketplace fee, is split among the pool's contributors in proportion to
their share weights. Each contributor's cut is recorded as a claimable
revenue share. Settlement collects all unclaimed shares of a user and marks
them claimed in a single operation.
*/
package revenue
