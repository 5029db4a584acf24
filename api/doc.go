// Package api provides the HTTP REST API for the toy robot board.
//
// Endpoints (each also accepts a trailing slash):
//
// Commands:
//   - POST /place - Place the unit, body {"x":0,"y":0,"face":"NORTH"}
//   - POST /move - Move one cell forward
//   - POST /left, POST /right - Rotate 90 degrees
//   - POST /rotate - Rotate, body {"direction":"LEFT|RIGHT"}
//   - GET /report - Report position and orientation
//   - DELETE /remove - Take the unit off the board
//
// Queries:
//   - GET / - Banner
//   - GET /state - Current placement, placed or not
//   - GET /health - Liveness
//   - GET /metrics - Prometheus exposition, when a gatherer is configured
//   - GET /ws - WebSocket state stream, when a hub is configured
//
// Responses:
//
// Commands answer 200 with the command result:
//
//	{"action":"move","outcome":"blocked","success":true,"message":"Toy model did not move.","placed":true,"state":{...}}
//
// A command issued before a placement answers 400 with
// {"error": "Toy model not placed yet."}. Invalid input answers 422 with
// {"error": "validation failed", "detail": [{"loc":["body","x"],"msg":"..."}]}.
// Any other failure answers 500.
//
// Every response carries an X-Request-ID header, reused from the request when
// the client sent one.
package api
