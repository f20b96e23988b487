// Package instrument holds the naming conventions of the derivatives feed.
// Perpetual contracts are named like "BTCUSD-PERP"; their underlying index
// uses the same name with the PERP suffix swapped for INDEX.
package instrument

import (
	"os"
	"strings"
)

const (
	envInstrument = "TERMINAL_INSTRUMENT"

	perpMarker  = "PERP"
	indexMarker = "INDEX"
)

// FromEnv returns the configured instrument name, falling back to def.
func FromEnv(def string) string {
	if v := strings.TrimSpace(os.Getenv(envInstrument)); v != "" {
		return strings.ToUpper(v)
	}
	return strings.ToUpper(strings.TrimSpace(def))
}

// IsPerpetual reports whether name refers to a perpetual contract.
func IsPerpetual(name string) bool {
	return strings.Contains(name, perpMarker)
}

// IndexName maps a perpetual contract to its underlying index name,
// e.g. "BTCUSD-PERP" → "BTCUSD-INDEX". Non-perpetual names pass through.
func IndexName(name string) string {
	return strings.Replace(name, perpMarker, indexMarker, 1)
}

// Base extracts the base currency from a perpetual name for display,
// e.g. "BTCUSD-PERP" → "BTC".
func Base(name string) string {
	return strings.TrimSuffix(name, "USD-"+perpMarker)
}
