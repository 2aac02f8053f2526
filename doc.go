/*
Package catscope provides fine-grained control over log levels on a per-category basis,
with the configuration persisted in a key-value store. Categories form a hierarchy via
dotted names ("api.client.http"), and a category without an explicitly configured level
inherits the level of its nearest configured ancestor, making it simple to turn up the
verbosity for a whole subsystem with a single entry in the store.

Please see https://github.com/catscope/catscope for more details.
*/
package catscope
