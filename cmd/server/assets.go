package main

import "embed"

// embeddedWeb holds the page, its fragments and the stylesheet.
//
//go:embed web
var embeddedWeb embed.FS
