// Package server exposes a toast.Store to renderers and other processes.
//
// The HTTP API mirrors the store operations:
//
//	GET    /api/toasts        list active toasts
//	POST   /api/toasts        create a toast
//	PUT    /api/toasts/{id}   update a toast in place
//	DELETE /api/toasts/{id}   dismiss a toast
//	DELETE /api/toasts        clear every toast
//	GET    /api/defaults      read the default options
//	PATCH  /api/defaults      change the default options
//
// GET /ws upgrades to a WebSocket that first sends a "snapshot" frame and
// then one frame per change. Every frame carries the full list and the
// store Seq, so a renderer can always replace its state with the newest
// frame. Clients that fall behind by more than Config.ClientBuffer frames
// are disconnected.
//
// Failed calls answer with {"error": {...}} carrying a coded error from
// internal/errors and its HTTP status.
package server
