/*
Package gconf provides a toolkit for managing per-package configuration
singletons.

Each configuration is stored under a single well known key, derived from the
package name. Updates go through a generic handler that authorizes the
change with the signature of the current configuration owner.
*/
package gconf
