package services

import "errors"

// ErrNotFound is returned by stores when a conversation or HTML payload does not exist.
var ErrNotFound = errors.New("not found")

// Parameters holds the sampling parameters forwarded to upstream providers. Nil fields
// are left out of the request so the provider's defaults apply.
type Parameters struct {
	Temperature *float32 `yaml:"temperature"`
	TopP        *float32 `yaml:"topP"`
	TopK        *int     `yaml:"topK"`
}
