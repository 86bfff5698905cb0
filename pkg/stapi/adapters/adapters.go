// Package adapters binds stapi routes to concrete HTTP frameworks.
package adapters

import (
	"fmt"

	"github.com/stlmpp/stapi/pkg/stapi"
)

var (
	_ stapi.WebServer = (*EchoAdapter)(nil)
	_ stapi.WebServer = (*GinAdapter)(nil)
	_ stapi.WebServer = (*FiberAdapter)(nil)
	_ stapi.WebServer = (*MuxAdapter)(nil)
)

// New returns a default adapter for the named framework: echo, gin, fiber
// or mux.
func New(name string) (stapi.WebServer, error) {
	switch name {
	case "", "echo":
		return NewDefaultEchoAdapter(), nil
	case "gin":
		return NewDefaultGinAdapter(), nil
	case "fiber":
		return NewDefaultFiberAdapter(), nil
	case "mux":
		return NewDefaultMuxAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown server adapter %q", name)
	}
}
