// File: request/request.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// HTTP request engine with retry, fixed backoff, and rate-limit handling.

package request

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/chatloop/control"
	"github.com/momentics/chatloop/task"
)

var log = logrus.WithField("component", "request")

// DefaultMaxRetries is the retry budget used by Do.
const DefaultMaxRetries = 5

// RetryDelay is the fixed backoff between retryable failures. The rate-limit
// path ignores it and uses the server's Retry-After value instead.
const RetryDelay = time.Second

// HTTPError is the single structured failure the engine surfaces. Exactly
// one of ReturnCode != 0 or HTTPStatus >= 400 identifies the cause; both
// zero means the transfer produced stderr output or an unparseable response.
type HTTPError struct {
	URL        string
	ReturnCode int
	HTTPStatus int
	Text       string
}

func (e *HTTPError) Error() string {
	if e.ReturnCode != 0 {
		return fmt.Sprintf("http request %s failed: return code %d: %s", e.URL, e.ReturnCode, e.Text)
	}
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("http request %s failed: status %d: %s", e.URL, e.HTTPStatus, e.Text)
	}
	return fmt.Sprintf("http request %s failed: %s", e.URL, e.Text)
}

// Do issues an HTTP request with the default retry budget. See DoWithRetries.
func Do(t *task.Task, url string, options map[string]string, timeout time.Duration) (string, error) {
	return DoWithRetries(t, url, options, timeout, DefaultMaxRetries)
}

// DoWithRetries fetches url through the host's transfer process and returns
// the response body. options follow the host's transfer convention; the
// option requesting response headers is always injected, since the engine
// needs the status line to classify the outcome.
//
// maxRetries bounds how many failed attempts are retried; the call makes at
// most maxRetries+1 attempts. 429 replays do not count against the budget.
func DoWithRetries(t *task.Task, url string, options map[string]string, timeout time.Duration, maxRetries int) (string, error) {
	opts := make(map[string]string, len(options)+1)
	for k, v := range options {
		opts[k] = v
	}
	opts["header"] = "1"

	remaining := maxRetries
	for {
		res, err := task.Run(t, "url:"+url, opts, timeout)
		if err != nil {
			return "", err
		}

		if res.ReturnCode != 0 || res.Stderr != "" {
			httpErr := &HTTPError{URL: url, ReturnCode: res.ReturnCode, Text: res.Stderr}
			if remaining > 0 {
				remaining--
				control.HTTPRetries.WithLabelValues("transport").Inc()
				log.WithFields(logrus.Fields{"url": url, "return_code": res.ReturnCode}).
					Debug("transport failure, backing off")
				task.Sleep(t, RetryDelay)
				continue
			}
			control.HTTPRequests.WithLabelValues("transport_error").Inc()
			return "", httpErr
		}

		status, headers, body, perr := splitResponse(res.Stdout)
		if perr != nil {
			control.HTTPRequests.WithLabelValues("malformed").Inc()
			return "", &HTTPError{URL: url, Text: perr.Error()}
		}

		if status == 429 {
			if seconds, ok := retryAfter(headers); ok {
				control.HTTPRetries.WithLabelValues("rate_limited").Inc()
				log.WithFields(logrus.Fields{"url": url, "retry_after": seconds}).
					Debug("rate limited, replaying after server delay")
				task.Sleep(t, time.Duration(seconds)*time.Second)
				continue // replay the identical attempt, budget untouched
			}
			// 429 without a usable Retry-After falls through to the
			// ordinary HTTP error path.
		}

		if status >= 400 {
			httpErr := &HTTPError{URL: url, HTTPStatus: status, Text: body}
			if remaining > 0 {
				remaining--
				control.HTTPRetries.WithLabelValues("http_error").Inc()
				task.Sleep(t, RetryDelay)
				continue
			}
			control.HTTPRequests.WithLabelValues("http_error").Inc()
			return "", httpErr
		}

		control.HTTPRequests.WithLabelValues("success").Inc()
		return body, nil
	}
}
