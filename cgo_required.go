package main

import _ "runtime/cgo"

// The sqlite snapshot store links against the C sqlite library, so the agent
// refuses to build without cgo instead of failing on first use.
