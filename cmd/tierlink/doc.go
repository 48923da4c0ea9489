// Package main hosts the tierlink CLI.
//
// The Cobra command tree loads record sets from CSV files or SQLite queries,
// runs a tiered match plan against them and writes the linked result. It
// also scaffolds and validates plan files, normalizes CSV columns ahead of a
// run and lists the run history kept in the configured database.
package main
