// Package database opens the Hearth SQLite store and applies its schema.
//
// Every table is STRICT. The connection uses WAL mode when configured, a
// busy timeout, and a single open connection so writers never contend.
//
// Migrations are embedded by the top-level migrations package and named
//
//	YYYYMMDD_HHMMSS_description.up.sql
//	YYYYMMDD_HHMMSS_description.down.sql
//
// The first two underscore-separated parts form the version. Versions are
// applied in lexical order, each in its own transaction, and recorded in
// schema_migrations.
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
