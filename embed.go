package liveui

import "embed"

// TemplateFS contains the embedded HTML templates: the fallback document wrapped around
// model output that did not follow the HTML_PAGE format, and the page used to render a
// stored message.
//
//go:embed templates/*
var TemplateFS embed.FS
