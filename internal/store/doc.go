// Package store keeps a SQLite log of dead code elimination runs.
//
// Each run records the program it ran on, the rules it applied, the module
// fingerprints before and after, and every rule firing in order.
//
// # Ordering
//
//   - Runs are numbered by seq, a logical clock, never by timestamps.
//   - Queries order by seq ASC, id ASC COLLATE BINARY so results are
//     identical across reads.
//   - Run IDs are content addressed (emit.RunID), so recording the same run
//     twice is a no-op.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability and performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: firings must reference a run
package store
