// Package db provides the embedded database schema and the default menu.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// Menu is the default catalog served when no database catalog is configured.
//
//go:embed seed/menu.json
var Menu []byte
