// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package api defines the contract between the chatloop core and the host
// event loop it runs on.
//
// A host is any single-threaded event loop that can arm one-shot timers,
// spawn external processes, and watch file descriptors for readability, and
// that reports every completion by calling back into the core with an opaque
// callback id. WeeChat-style plugin runtimes are the original target; the
// hostloop package ships a reference implementation for standalone use.
package api
