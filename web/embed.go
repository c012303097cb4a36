// Package web embeds the page templates and static assets so the binary
// serves them without touching the filesystem.
package web

import "embed"

// TemplatesFS holds the page and partial templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds stylesheets served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
