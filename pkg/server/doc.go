// Package server serves drag-and-drop boards over WebSocket.
//
// Every WebSocket connection gets its own Board: a private copy of the page
// document, a layout engine sized to the client's viewport and a dnd.Group
// wired to the configured selectors. Pointer events arrive as binary
// protocol frames and are dispatched into the board's document; drag
// signals flow back as Signal frames, and every finished drag is followed
// by a Snapshot of the body.
//
// # Routes
//
//	GET /                     the board page, with the client script
//	GET /ws                   WebSocket endpoint
//	GET /_dragsort/client.js  thin browser client
//	GET /metrics              Prometheus metrics
//	GET /healthz              liveness probe
//
// # Connection Lifecycle
//
//  1. The client sends a Handshake frame carrying a Hello.
//  2. The server builds the board and answers with a Welcome.
//  3. Event frames are handled in order on the connection's read goroutine.
//  4. Control pings keep idle connections alive.
//  5. Closing the connection destroys the group, releasing any drag.
//
// # Thread Safety
//
// A board is only touched by its connection's read goroutine. Writes are
// serialized by a per-connection mutex so the ping loop can share the
// socket.
package server
