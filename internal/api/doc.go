// Package api provides the HTTP surface of the proxy: REST endpoints for
// nodes, sensors and firmwares, the WoT thing resources with their
// websocket property stream, and a health check.
//
// The server follows the same lifecycle pattern as the other components:
//
//	server := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Mutating endpoints can be protected with an HS256 bearer token by
// configuring Server.jwt_secret; read endpoints stay open for local
// dashboards.
package api
