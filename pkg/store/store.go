// Package store re-exports the workspace scope store so embedders can
// persist environment and variable maps without importing internals.
package store

import (
	istore "github.com/loykin/apiscript/internal/store"
)

// Config selects the backing database and table for scope persistence.
type Config = istore.Config

// Store is a workspace scope store backed by sqlite or postgresql.
type Store = istore.Store

const (
	DriverSqlite     = istore.DriverSqlite
	DriverPostgresql = istore.DriverPostgresql

	ScopeEnvironment = istore.ScopeEnvironment
	ScopeVariables   = istore.ScopeVariables
)

// Open connects to the configured database and ensures the scope schema.
func Open(cfg Config) (*Store, error) {
	return istore.Open(cfg)
}
