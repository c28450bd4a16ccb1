// Package websocket pushes dashboard events to browsers.
//
// A single Hub goroutine owns the client set. Services publish
// dataset:loaded, dataset:rejected and charts:updated events through
// Hub.Publish, which never blocks the caller. Each Client runs a read pump
// for keepalive and a write pump that drains its send buffer; a client that
// cannot keep up is disconnected.
package websocket
