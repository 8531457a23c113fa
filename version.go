package routine

import _ "embed"

// Version is the release of the routine module.
//
//go:embed VERSION
var Version string
