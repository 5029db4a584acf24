// Package websocket pushes board state to WebSocket subscribers.
//
// A central Hub owns the subscriber set. Each connection gets a read pump,
// which only detects disconnects and answers pongs, and a write pump, which
// sends queued updates and keepalive pings.
//
// Message Protocol:
//
// The server never reads commands from subscribers. It sends one JSON object
// per frame:
//
//	{"event":"state_update","placed":true,"state":{"position":{"x":0,"y":1},"face":"NORTH"},"report":"placed at (0, 1) facing NORTH"}
//
// A new subscriber first receives the state current at connection time, then
// one message after every committed change.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	svc := service.NewUnitService(st, service.WithObserver(hub))
//
// Hub implements service.Observer. StateChanged never blocks the service;
// when the broadcast queue is full the update is dropped and logged.
package websocket
