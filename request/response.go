// File: request/response.go
// Author: momentics <momentics@gmail.com>
//
// Parsing of the raw response framing produced by the host's transfer
// process with headers requested: STATUS-LINE CRLF *(HEADER-LINE CRLF) CRLF
// BODY.

package request

import (
	"fmt"
	"strconv"
	"strings"
)

// splitResponse splits raw into the numeric status code, the header lines,
// and the body following the blank line that terminates the header block.
func splitResponse(raw string) (status int, headers []string, body string, err error) {
	end := strings.Index(raw, "\r\n\r\n")
	if end < 0 {
		return 0, nil, "", fmt.Errorf("response has no header block")
	}
	headers = strings.Split(raw[:end], "\r\n")
	body = raw[end+4:]

	fields := strings.Fields(headers[0])
	if len(fields) < 2 {
		return 0, nil, "", fmt.Errorf("malformed status line %q", headers[0])
	}
	status, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, nil, "", fmt.Errorf("malformed status code in %q", headers[0])
	}
	return status, headers, body, nil
}

// retryAfter extracts the integer Retry-After header value, in seconds.
func retryAfter(headers []string) (int, bool) {
	for _, h := range headers[1:] {
		name, value, ok := strings.Cut(h, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Retry-After") {
			continue
		}
		seconds, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || seconds < 0 {
			return 0, false
		}
		return seconds, true
	}
	return 0, false
}
