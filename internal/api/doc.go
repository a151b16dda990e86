// Package api provides NanoServer's local HTTP control surface.
//
// It exposes the query engine (ad-hoc SQL execution, table listing, column
// introspection), the PHP server supervisor (start/stop/restart/status),
// and a WebSocket stream of the PHP server's log lines. The server binds
// the loopback interface by default: this is a single-user developer tool,
// not a network service.
//
// The server follows the same lifecycle pattern as the other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
