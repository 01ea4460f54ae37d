/*
Package orm provides an easy to use db wrapper.

It breaks the state space into prefixed sections called buckets. Each
bucket contains only one type of entity. It has a primary index, may use an
auto incremented id sequence for the primary key and may possess one or
more secondary indexes (1:1 or 1:N).
*/
package orm
