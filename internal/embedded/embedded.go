// Package embedded provides access to the seed event catalog that ships
// inside the binary.
package embedded

import "embed"

// FS contains the embedded seed catalog files.
//
//go:embed seed/*
var FS embed.FS
