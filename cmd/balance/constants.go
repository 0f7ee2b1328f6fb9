package main

// Default limits for CLI commands.
const (
	DefaultListLimit    = 20
	DefaultHistoryLimit = 50
)

// Valid form formats for entities save.
var validFormats = []string{"auto", "json", "yaml"}
