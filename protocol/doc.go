// Author: momentics <momentics@gmail.com>

// Package protocol implements the WebSocket wire framing the socket session
// needs: a streaming decoder that never blocks past the bytes already
// received, and a client-side masked encoder. Anything beyond data, ping,
// pong, and close frames is out of scope.
package protocol
