// Package database provides the SQLite persistence layer for MySController.
//
// It wraps database/sql with connection configuration (WAL mode, busy
// timeout, foreign keys), embedded schema migrations applied at startup,
// and a health check. The node, sensor and firmware repositories all share
// the handle; SQLite serialises writers while WAL keeps readers concurrent,
// which matches the proxy's workload of many small handler transactions.
package database
