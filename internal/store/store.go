// Package store persists workspace-scoped environment and variable maps
// between script runs. The engine itself holds no state across runs;
// persistence is a collaborator concern layered on top of it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/loykin/apiscript/internal/common"
	"github.com/loykin/apiscript/internal/retry"
	"github.com/loykin/apiscript/internal/state"
)

const (
	DriverSqlite     = "sqlite"
	DriverPostgresql = "postgresql"

	DefaultTableName = "apiscript_scopes"

	// Scope names for the two value maps a workspace carries.
	ScopeEnvironment = "environment"
	ScopeVariables   = "variables"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config selects the backing database and table for scope persistence.
type Config struct {
	Driver    string `mapstructure:"driver"`
	DSN       string `mapstructure:"dsn"`
	TableName string `mapstructure:"table_name"`
}

// Store is a workspace scope store backed by sqlite or postgresql.
type Store struct {
	db      *sql.DB
	dialect dialect
	table   string
	retry   *retry.Config
}

// Open connects to the configured database and ensures the scope schema.
func Open(cfg Config) (*Store, error) {
	var d dialect
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSqlite:
		d = sqliteDialect{}
	case DriverPostgresql, "postgres":
		d = postgresDialect{}
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}

	table := cfg.TableName
	if table == "" {
		table = DefaultTableName
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("store: invalid table name %q", table)
	}

	dsn := cfg.DSN
	if dsn == "" && d.DriverName() == DriverSqlite {
		dsn = ":memory:"
	}

	db, err := d.Connect(dsn)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, dialect: d, table: table, retry: retry.DefaultConfig()}
	if err := s.ensure(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger := common.GetLogger().WithComponent("store")
	logger.Info("scope store opened", "driver", d.DriverName(), "table", table)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) ensure() error {
	for i, q := range s.dialect.EnsureStatements(s.table) {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to create table %d in schema setup: %w", i+1, err)
		}
	}
	return nil
}

// SaveScope replaces the stored values of one scope of a workspace.
// The replacement is transactional: a failed save leaves the previous
// values in place.
func (s *Store) SaveScope(ctx context.Context, workspace, scope string, values state.Map) error {
	if err := validScope(scope); err != nil {
		return err
	}

	logger := common.GetLogger().WithComponent("store").WithWorkspace(workspace)
	logger.Debug("saving scope", "scope", scope, "count", len(values))

	return retry.Do(ctx, s.retry, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin scope save: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		del := fmt.Sprintf("DELETE FROM %s WHERE workspace = %s AND scope = %s",
			s.table, s.dialect.Placeholder(1), s.dialect.Placeholder(2))
		if _, err := tx.ExecContext(ctx, del, workspace, scope); err != nil {
			return fmt.Errorf("failed to clear scope %s/%s: %w", workspace, scope, err)
		}

		now := time.Now().UTC().Format(time.RFC3339Nano)
		ins := fmt.Sprintf("INSERT INTO %s(workspace, scope, name, value, updated_at) VALUES(%s,%s,%s,%s,%s)",
			s.table,
			s.dialect.Placeholder(1), s.dialect.Placeholder(2), s.dialect.Placeholder(3),
			s.dialect.Placeholder(4), s.dialect.Placeholder(5))
		for name, value := range values {
			if _, err := tx.ExecContext(ctx, ins, workspace, scope, name, value, now); err != nil {
				return fmt.Errorf("failed to store %s/%s/%s: %w", workspace, scope, name, err)
			}
		}

		return tx.Commit()
	})
}

// LoadScope returns the stored values of one scope of a workspace.
// A workspace or scope that was never saved yields an empty map.
func (s *Store) LoadScope(ctx context.Context, workspace, scope string) (state.Map, error) {
	if err := validScope(scope); err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT name, value FROM %s WHERE workspace = %s AND scope = %s",
		s.table, s.dialect.Placeholder(1), s.dialect.Placeholder(2))

	rows, err := s.db.QueryContext(ctx, q, workspace, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load scope %s/%s: %w", workspace, scope, err)
	}
	defer func() { _ = rows.Close() }()

	values := state.Map{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan scope entry: %w", err)
		}
		values[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scope entries: %w", err)
	}
	return values, nil
}

// ListWorkspaces returns the distinct workspace names with stored scopes.
func (s *Store) ListWorkspaces(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT workspace FROM %s ORDER BY workspace", s.table)

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan workspace name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workspaces: %w", err)
	}
	return names, nil
}

// ClearWorkspace removes every stored scope of a workspace.
func (s *Store) ClearWorkspace(ctx context.Context, workspace string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE workspace = %s", s.table, s.dialect.Placeholder(1))

	return retry.Do(ctx, s.retry, func() error {
		if _, err := s.db.ExecContext(ctx, q, workspace); err != nil {
			return fmt.Errorf("failed to clear workspace %s: %w", workspace, err)
		}
		return nil
	})
}

func validScope(scope string) error {
	switch scope {
	case ScopeEnvironment, ScopeVariables:
		return nil
	}
	return fmt.Errorf("store: unknown scope %q", scope)
}
