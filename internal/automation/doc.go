// Package automation turns commands and sensor readings into actuator
// changes.
//
// Commands arrive as JSON envelopes from the REST API, the WebSocket, MQTT
// or an intent:
//
//	{"type":"CONTROL_DEVICE","target":"fan","value":"HIGH"}
//	{"type":"SET_MODE","target":"night","value":true}
//	{"type":"SCENE_CONTROL","target":"movie-night","value":"activate"}
//
// ParseCommand decodes the wire strings into closed enums once, at the
// boundary. Engine.Handle dispatches on the command type; a guard refusing
// a change is a soft rejection (Result.Applied false), not an error.
//
// Engine.Evaluate runs the sensor rules after every poll:
//
//   - climate: auto fan from heat index, windows closed on rain
//   - security: motion in vacation trips the emergency; bursts of motion
//     raise an alert
//   - air quality: ventilation on poor air, emergency on hazardous CO2
//   - energy: lights off in daylight without motion; consumption estimate
//   - lighting: lights on for motion in the dark
//
// Each rule can be switched off with an AUTOMATION_RULE command. The
// engine is driven by the control loop and is not safe for concurrent
// use, except for the read-only accessors noted below.
package automation
