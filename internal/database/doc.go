// Package database provides the sqlite connection used by the storefront.
//
// The database holds two things: the kv_entries table backing the default
// persistent key-value store (see the kv sub-package) and the sessions table
// used by the HTTP cookie session manager.
//
//	db, err := database.NewDatabase("./storefront.db")
//	store := kv.NewRepository(db.DB)
package database
