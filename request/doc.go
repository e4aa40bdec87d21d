// Author: momentics <momentics@gmail.com>

// Package request implements the HTTP request primitive of chatloop on top
// of the task scheduler and the host's process hook.
//
// A request is one sequential computation: spawn the transfer process, await
// its completion, parse the raw response framing, and either return the body
// or back off and retry. Rate limiting (429) is always retried after the
// server-dictated delay and never consumes retry budget; transport failures
// and HTTP-level errors retry up to the budget and then surface as a single
// structured HTTPError.
package request
