/*
Package app assembles the marketplace engine from its pieces.

A Dispatcher owns the backing store and the decorated handler stack. Every
transaction passed to it runs through the decorator chain, ending in the
router that finds the extension handler registered for the message path.
The savepoint decorator gives each delivery all-or-nothing write semantics.
*/
package app
