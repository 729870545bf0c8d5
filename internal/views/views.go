// Package views embeds the HTML templates for production builds.
package views

import "embed"

//go:embed *.html
var FS embed.FS
