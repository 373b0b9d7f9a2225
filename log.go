package jumplist

import "github.com/rs/zerolog"

var logger = zerolog.Nop()

// SetLogger routes parse warnings, such as best-effort recovery from a
// corrupt custom destinations category, to the given logger. The default
// logger discards everything.
func SetLogger(l zerolog.Logger) {
	logger = l
}
