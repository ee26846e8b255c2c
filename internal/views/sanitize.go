package views

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

var ugcPolicy = bluemonday.UGCPolicy()

// richText renders user content with basic formatting kept and scripts,
// handlers and unsafe URLs removed.
func richText(s string) template.HTML {
	if s == "" {
		return ""
	}
	return template.HTML(ugcPolicy.Sanitize(s))
}
