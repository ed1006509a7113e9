// Package input turns key, character and pointer events into engine edit
// commands.
//
// The Dispatcher consults the edit command table first. Left and Right are
// handled outside the table so the caret can wrap across line boundaries:
// Left at the start of a line moves to the end of the previous line, and
// Right just before a line break moves to the start of the next one.
//
// Pointer presses become click commands, pointer movement during a press
// becomes sampled drag commands, and the wheel scrolls the viewport
// locally. All outgoing commands are fire-and-forget; send failures are
// logged and counted, never retried.
//
// A Dispatcher is not safe for concurrent use. It reads the caret anchor
// and the line cache, so it runs on the view loop that owns them.
package input
