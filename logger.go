package tsdemux

import "github.com/asticode/go-astikit"

// Right now we use a global logger because it feels weird to inject a logger in pure functions.
// It's only needed to let the developer know about stream anomalies that are survived rather
// than returned: continuity discrepancies, unknown descriptor tags, skipped af_descriptor loops.
var logger = astikit.AdaptStdLogger(nil)

func SetLogger(l astikit.StdLogger) { logger = astikit.AdaptStdLogger(l) }
