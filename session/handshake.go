// File: session/handshake.go
// Author: momentics <momentics@gmail.com>
//
// Blocking setup exchanges: HTTP CONNECT through a proxy and the WebSocket
// client upgrade. Both run before the socket goes non-blocking.

package session

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/momentics/chatloop/control"
)

const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

const maxHandshakeSize = 8192

// proxyConnect issues an HTTP CONNECT for host:port and waits for a 2xx.
func proxyConnect(rw io.ReadWriter, proxy control.ProxyConfig, host string, port int) error {
	target := fmt.Sprintf("%s:%d", host, port)
	var req strings.Builder
	fmt.Fprintf(&req, "CONNECT %s HTTP/1.1\r\nHost: %s\r\n", target, target)
	if proxy.Username != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(proxy.Username + ":" + proxy.Password))
		fmt.Fprintf(&req, "Proxy-Authorization: Basic %s\r\n", cred)
	}
	req.WriteString("\r\n")

	if _, err := io.WriteString(rw, req.String()); err != nil {
		return fmt.Errorf("proxy connect write: %w", err)
	}
	head, err := readHeaderBlock(rw)
	if err != nil {
		return fmt.Errorf("proxy connect read: %w", err)
	}
	status, err := statusCode(head)
	if err != nil {
		return fmt.Errorf("proxy connect: %w", err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("proxy connect refused with status %d", status)
	}
	return nil
}

// upgrade performs the client side of the WebSocket opening handshake.
func upgrade(rw io.ReadWriter, host, path string) error {
	var nonce [16]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("handshake nonce: %w", err)
	}
	key := base64.StdEncoding.EncodeToString(nonce[:])

	var req strings.Builder
	fmt.Fprintf(&req, "GET %s HTTP/1.1\r\n", path)
	fmt.Fprintf(&req, "Host: %s\r\n", host)
	req.WriteString("Upgrade: websocket\r\nConnection: Upgrade\r\n")
	fmt.Fprintf(&req, "Sec-WebSocket-Key: %s\r\n", key)
	req.WriteString("Sec-WebSocket-Version: 13\r\n\r\n")

	if _, err := io.WriteString(rw, req.String()); err != nil {
		return fmt.Errorf("handshake write: %w", err)
	}

	head, err := readHeaderBlock(rw)
	if err != nil {
		return fmt.Errorf("handshake read: %w", err)
	}
	status, err := statusCode(head)
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	if status != 101 {
		return fmt.Errorf("handshake rejected with status %d", status)
	}

	h := sha1.New()
	h.Write([]byte(key + websocketGUID))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if got := headerValue(head, "Sec-WebSocket-Accept"); got != want {
		return fmt.Errorf("handshake accept mismatch: got %q", got)
	}
	return nil
}

// readHeaderBlock reads byte by byte until the blank line that terminates an
// HTTP header block. Reading past it would swallow frame bytes that belong
// to the decoder.
func readHeaderBlock(r io.Reader) (string, error) {
	var buf []byte
	one := make([]byte, 1)
	for {
		if len(buf) > maxHandshakeSize {
			return "", fmt.Errorf("header block exceeds %d bytes", maxHandshakeSize)
		}
		if _, err := io.ReadFull(r, one); err != nil {
			return "", err
		}
		buf = append(buf, one[0])
		if len(buf) >= 4 && string(buf[len(buf)-4:]) == "\r\n\r\n" {
			return string(buf), nil
		}
	}
}

func statusCode(head string) (int, error) {
	line, _, _ := strings.Cut(head, "\r\n")
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, fmt.Errorf("malformed status line %q", line)
	}
	return strconv.Atoi(fields[1])
}

func headerValue(head, name string) string {
	for _, line := range strings.Split(head, "\r\n")[1:] {
		k, v, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
