// Package intent maps recognised utterances and gestures onto controller
// commands.
//
// Recognition itself happens elsewhere (a speech front end, a gesture
// sensor); this package receives the recognised text or gesture name.
// Action intents become automation.Commands with source "intent", so they
// pass through the same mode guards as every other surface. Query intents
// (security status, energy report, weather report) produce a one-line
// answer for the display instead.
package intent
