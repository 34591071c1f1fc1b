package catalog

import _ "embed"

//go:embed static/index.html
var scannerHTML []byte

//go:embed static/admin.html
var adminHTML []byte
