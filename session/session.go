// File: session/session.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Socket session: setup, readiness-driven read loop, outbound frames.

package session

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/chatloop/api"
	"github.com/momentics/chatloop/control"
	"github.com/momentics/chatloop/protocol"
	"github.com/momentics/chatloop/task"
)

var log = logrus.WithField("component", "session")

// Options configures connection setup and upstream delivery.
type Options struct {
	// Timeout bounds name resolution, connect, proxy and TLS exchanges,
	// and the upgrade. Zero means the control default.
	Timeout time.Duration
	// Proxy, when Type is non-empty, routes the connection through an HTTP
	// CONNECT proxy. The values are resolved by the embedding client.
	Proxy control.ProxyConfig
	// TLSConfig overrides the trust material for wss URLs. Nil uses the
	// system roots with the server name derived from the URL.
	TLSConfig *tls.Config
	// OnMessage receives each inbound data frame payload, a JSON-encoded
	// message unit. Interpretation is up to the caller.
	OnMessage func(data []byte)
	// OnClose is invoked once when the session dies from a socket-level
	// error or an orderly close. Reconnection is the caller's business.
	OnClose func(err error)
}

// Session is one persistent duplex connection plus its readiness
// registration with the host.
type Session struct {
	sched      *task.Scheduler
	fd         uintptr
	conn       io.ReadWriteCloser
	dec        *protocol.Decoder
	opts       Options
	callbackID string
	lastPong   time.Time
	closed     bool
}

// Connect resolves proxy and TLS settings, opens the connection, performs
// the WebSocket upgrade, switches the socket to non-blocking mode, and
// registers the read loop with the scheduler and the host readiness hook.
//
// Setup itself is a blocking, timeout-bounded sequence; it must be driven
// from the host loop thread like everything else.
func Connect(s *task.Scheduler, rawURL string, opts Options) (*Session, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("session: parse url: %w", err)
	}

	var useTLS bool
	switch u.Scheme {
	case "ws":
	case "wss":
		useTLS = true
	default:
		return nil, fmt.Errorf("session: unsupported scheme %q", u.Scheme)
	}

	host := u.Hostname()
	port := 80
	if useTLS {
		port = 443
	}
	if p := u.Port(); p != "" {
		if port, err = strconv.Atoi(p); err != nil {
			return nil, fmt.Errorf("session: bad port %q", p)
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = control.DefaultConfig().NetworkTimeout
	}

	dialHost, dialPort := host, port
	if opts.Proxy.Type != "" {
		if opts.Proxy.Type != "http" {
			return nil, fmt.Errorf("session: unsupported proxy type %q", opts.Proxy.Type)
		}
		dialHost, dialPort = opts.Proxy.Host, opts.Proxy.Port
	}

	raw, err := dialRaw(dialHost, dialPort, timeout)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	var conn io.ReadWriteCloser = raw
	if opts.Proxy.Type != "" {
		if err := proxyConnect(raw, opts.Proxy, host, port); err != nil {
			raw.Close()
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	if useTLS {
		cfg := opts.TLSConfig
		if cfg == nil {
			cfg = &tls.Config{ServerName: host}
		} else if cfg.ServerName == "" {
			cfg = cfg.Clone()
			cfg.ServerName = host
		}
		tlsConn := tls.Client(raw, cfg)
		if err := tlsConn.Handshake(); err != nil {
			raw.Close()
			return nil, fmt.Errorf("session: tls handshake: %w", err)
		}
		conn = tlsConn
	}

	path := u.RequestURI()
	if path == "" {
		path = "/"
	}
	if err := upgrade(conn, u.Host, path); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: %w", err)
	}

	// Steady state: the read loop must never stall the host.
	if err := raw.SetNonblock(true); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: set nonblock: %w", err)
	}

	sess := &Session{
		sched:      s,
		fd:         raw.Fd(),
		conn:       conn,
		dec:        protocol.NewDecoder(conn),
		opts:       opts,
		callbackID: task.NewID(),
	}

	s.RegisterHandler(sess.callbackID, sess.onReadable)
	if err := s.Host().HookFD(sess.fd, sess.callbackID); err != nil {
		s.Unregister(sess.callbackID)
		conn.Close()
		return nil, fmt.Errorf("session: hook fd: %w", err)
	}

	log.WithFields(logrus.Fields{"url": rawURL, "fd": sess.fd}).Info("session connected")
	return sess, nil
}

// onReadable drains every frame that is immediately available. It is the
// persistent delivery target of the readiness hook.
func (s *Session) onReadable(any) {
	if s.closed {
		return
	}
	for {
		frame, err := s.dec.Next()
		if err != nil {
			if api.IsWouldBlock(err) {
				return // no more data this turn; registration stays armed
			}
			s.teardown(err, true)
			return
		}

		switch frame.Opcode {
		case protocol.OpcodePong:
			s.lastPong = time.Now()
			control.Frames.WithLabelValues("pong").Inc()
			return
		case protocol.OpcodeText:
			control.Frames.WithLabelValues("text").Inc()
			s.forward(frame.Payload)
			// keep draining: more frames may already be buffered
		default:
			control.Frames.WithLabelValues("other").Inc()
			return
		}
	}
}

func (s *Session) forward(payload []byte) {
	if !json.Valid(payload) {
		log.WithField("len", len(payload)).Warn("dropping non-JSON data frame")
		return
	}
	if s.opts.OnMessage != nil {
		s.opts.OnMessage(payload)
	}
}

// teardown removes the readiness registration and closes the connection.
// Never panics: a dying socket must not take the host loop down with it.
func (s *Session) teardown(err error, notify bool) {
	if s.closed {
		return
	}
	s.closed = true
	log.WithError(err).Warn("session closed")

	_ = s.sched.Host().UnhookFD(s.fd)
	s.sched.Unregister(s.callbackID)
	_ = s.conn.Close()

	if notify && s.opts.OnClose != nil {
		s.opts.OnClose(err)
	}
}

// SendJSON marshals v and sends it as a masked text frame.
func (s *Session) SendJSON(v any) error {
	if s.closed {
		return api.ErrConnClosed
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	return s.send(protocol.OpcodeText, data)
}

// Ping sends an empty ping frame for liveness probing. Pair with LastPong.
func (s *Session) Ping() error {
	if s.closed {
		return api.ErrConnClosed
	}
	return s.send(protocol.OpcodePing, nil)
}

func (s *Session) send(opcode byte, payload []byte) error {
	data, err := protocol.EncodeFrame(opcode, payload)
	if err != nil {
		return err
	}
	if _, err := s.conn.Write(data); err != nil {
		s.teardown(err, true)
		return err
	}
	return nil
}

// LastPong returns when the last pong frame was seen; zero if never.
func (s *Session) LastPong() time.Time {
	return s.lastPong
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	return s.closed
}

// Close sends a best-effort close frame and tears the session down without
// invoking OnClose.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	if data, err := protocol.EncodeFrame(protocol.OpcodeClose, nil); err == nil {
		_, _ = s.conn.Write(data)
	}
	s.teardown(nil, false)
	return nil
}
