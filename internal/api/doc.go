// Package api provides the HTTP and WebSocket surface of PinHub Core.
//
// It exposes the token-addressed pin endpoints, push notification and
// email submission, and the WebSocket endpoints hardware and app clients
// use to hold a live transport.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
