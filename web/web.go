// Package web embeds the console's page templates and static assets.
package web

import "embed"

// Templates holds the html/template sources.
//
//go:embed templates/*.html
var Templates embed.FS

// Static holds the stylesheet and script served under /static.
//
//go:embed static
var Static embed.FS
