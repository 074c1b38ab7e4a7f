// Package state keeps per-user conversation state: the current state name and
// a flat string map of collected data. Two Manager backends exist, an
// in-process map and Redis. Every mutation is written through immediately.
package state
