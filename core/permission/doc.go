// Package permission provides a read-only membership check over the session's
// flattened permission-name list, used by UI layers to gate actions.
package permission
