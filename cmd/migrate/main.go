package main

import (
	"edusmart/internal/config" // Custom import path (Config)
	"edusmart/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	conn := db.Migrate(cfg.DSN()) // Create tables, constraints and indexes

	// Seed the admin account when configured
	db.SeedAdmin(conn, cfg.AdminUsername, cfg.AdminPassword)
}
