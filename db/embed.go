// Package db embeds the storefront schema so binaries can migrate without
// shipping SQL files alongside them.
package db

import _ "embed"

// Schema holds the DDL for the catalog, promo, order, and settings tables,
// including the seeded singleton settings row.
//
//go:embed migrations/001_schema.sql
var Schema string
