// Package store provides SQLite-backed durable storage for the JDex index.
//
// The schema has six tables:
//   - areas, categories, folders, items: the four-level hierarchy
//   - storage_locations: informational catalog, not foreign-keyed
//   - activity_log: append-only audit trail
//
// Table and column names are part of the data-compatibility contract:
// snapshots move between installations as raw database images.
//
// # Access Patterns
//
// All row-level primitives live on Tx. Writers go through Store.Update,
// which commits once and reports commit failure as ErrCommit so the caller
// can tell "rejected" from "not persisted". Readers go through Store.View
// and see one consistent snapshot.
//
// Every statement binds caller data as parameters. The only identifiers
// ever formatted into SQL text are column names taken from the jd
// allow-lists and the fixed table names in this package.
//
// # Database Configuration
//
//   - WAL mode: readers do not block the writer
//   - synchronous=FULL: a returned commit is on disk
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
