/*
Package access issues time-bounded access grants.

A grant is created for every successful purchase and is valid until its
expiration time. Expired grants stay in storage, they are only excluded
from active listings.
*/
package access
