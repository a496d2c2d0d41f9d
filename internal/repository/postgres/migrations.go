package postgres

import "embed"

// Migrations holds the schema migration files applied at startup.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory within Migrations holding the *.up.sql files.
const MigrationsDir = "migrations"
