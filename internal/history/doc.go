// Package history persists completed build runs in SQLite so past builds can
// be inspected from the CLI. Schema changes add a migration file; applied
// versions are tracked in schema_migrations.
package history
