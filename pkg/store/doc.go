// Package store provides key-value backends for settings values.
//
// Values are keyed by option name. Every backend distinguishes a missing key
// (found=false) from a stored zero value or empty string, and is safe for
// concurrent use.
//
// Backends:
//   - MemoryStore keeps values in a map. Intended for tests and examples.
//   - SQLiteStore persists values in an `admin` table through the pure Go
//     modernc.org/sqlite driver. Integers are stored as decimal text, so a
//     key written with SetInt can be read back with GetStr and vice versa.
//
// Both satisfy settings.Store:
//
//	db, err := store.OpenSQLite(ctx, "/var/lib/app/settings.db")
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//	accessor := settings.NewAccessor(db)
package store
