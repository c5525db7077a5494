// Package api serves the Hearth REST API and WebSocket feed.
//
// All routes live under /api/v1. When api.token is configured every route
// except /health requires it as "Authorization: Bearer <token>". Browsers
// cannot set headers on a WebSocket upgrade, so clients first POST
// /ws-ticket and pass the returned single-use JWT as ?ticket=. Tickets are
// signed with api.token and expire after a minute.
//
// Commands, intents, scene activation and emergency requests are handed to
// the control loop and answered with its result. Schedule and scene
// definitions are edited directly through their registries, which the loop
// reads on its next tick.
//
// The WebSocket hub pushes the controller state to every client on change
// and every websocket.push_interval seconds. Clients may send commands and
// intents over the same connection.
package api
