// File: session/handshake_test.go
// Author: momentics <momentics@gmail.com>

package session

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"regexp"
	"strings"
	"testing"

	"github.com/momentics/chatloop/control"
)

// handshakePeer is the server end of a setup exchange: it captures the
// client's request and serves a canned (or computed) response.
type handshakePeer struct {
	request  bytes.Buffer
	respond  func(request string) string
	response *strings.Reader
}

func (p *handshakePeer) Write(b []byte) (int, error) {
	return p.request.Write(b)
}

func (p *handshakePeer) Read(b []byte) (int, error) {
	if p.response == nil {
		p.response = strings.NewReader(p.respond(p.request.String()))
	}
	return p.response.Read(b)
}

var keyPattern = regexp.MustCompile(`Sec-WebSocket-Key: (\S+)`)

func acceptFor(key string) string {
	h := sha1.New()
	h.Write([]byte(key + websocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func TestUpgradeAcceptsValidHandshake(t *testing.T) {
	peer := &handshakePeer{respond: func(req string) string {
		m := keyPattern.FindStringSubmatch(req)
		if m == nil {
			t.Fatal("request has no Sec-WebSocket-Key")
		}
		return "HTTP/1.1 101 Switching Protocols\r\n" +
			"Upgrade: websocket\r\nConnection: Upgrade\r\n" +
			"Sec-WebSocket-Accept: " + acceptFor(m[1]) + "\r\n\r\n"
	}}

	if err := upgrade(peer, "chat.example.com", "/websocket?token=x"); err != nil {
		t.Fatal(err)
	}

	req := peer.request.String()
	for _, want := range []string{
		"GET /websocket?token=x HTTP/1.1\r\n",
		"Host: chat.example.com\r\n",
		"Upgrade: websocket\r\n",
		"Sec-WebSocket-Version: 13\r\n",
	} {
		if !strings.Contains(req, want) {
			t.Errorf("request missing %q:\n%s", want, req)
		}
	}
}

func TestUpgradeRejectsWrongAccept(t *testing.T) {
	peer := &handshakePeer{respond: func(string) string {
		return "HTTP/1.1 101 Switching Protocols\r\n" +
			"Sec-WebSocket-Accept: bogus\r\n\r\n"
	}}
	if err := upgrade(peer, "h", "/"); err == nil {
		t.Fatal("forged accept value passed verification")
	}
}

func TestUpgradeRejectsNon101(t *testing.T) {
	peer := &handshakePeer{respond: func(string) string {
		return "HTTP/1.1 403 Forbidden\r\n\r\n"
	}}
	err := upgrade(peer, "h", "/")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("err = %v", err)
	}
}

func TestUpgradeDoesNotReadPastHeaderBlock(t *testing.T) {
	frame := "\x81\x02{}" // first server frame right behind the handshake
	peer := &handshakePeer{respond: func(req string) string {
		m := keyPattern.FindStringSubmatch(req)
		return "HTTP/1.1 101 OK\r\nSec-WebSocket-Accept: " + acceptFor(m[1]) + "\r\n\r\n" + frame
	}}

	if err := upgrade(peer, "h", "/"); err != nil {
		t.Fatal(err)
	}
	rest := make([]byte, 16)
	n, _ := peer.Read(rest)
	if string(rest[:n]) != frame {
		t.Errorf("leftover = %q, want the untouched frame bytes", rest[:n])
	}
}

func TestProxyConnectSendsAuthAndTarget(t *testing.T) {
	peer := &handshakePeer{respond: func(string) string {
		return "HTTP/1.1 200 Connection established\r\n\r\n"
	}}
	cfg := control.ProxyConfig{Type: "http", Username: "user", Password: "pass"}

	if err := proxyConnect(peer, cfg, "chat.example.com", 443); err != nil {
		t.Fatal(err)
	}

	req := peer.request.String()
	if !strings.HasPrefix(req, "CONNECT chat.example.com:443 HTTP/1.1\r\n") {
		t.Errorf("request = %q", req)
	}
	cred := base64.StdEncoding.EncodeToString([]byte("user:pass"))
	if !strings.Contains(req, "Proxy-Authorization: Basic "+cred+"\r\n") {
		t.Error("missing proxy credentials")
	}
}

func TestProxyConnectRejectsNon2xx(t *testing.T) {
	peer := &handshakePeer{respond: func(string) string {
		return "HTTP/1.1 407 Proxy Authentication Required\r\n\r\n"
	}}
	err := proxyConnect(peer, control.ProxyConfig{Type: "http"}, "h", 80)
	if err == nil || !strings.Contains(err.Error(), "407") {
		t.Errorf("err = %v", err)
	}
}

func TestReadHeaderBlockEnforcesLimit(t *testing.T) {
	huge := strings.NewReader("HTTP/1.1 101 OK\r\n" + strings.Repeat("X: y\r\n", 4096))
	if _, err := readHeaderBlock(huge); err == nil {
		t.Fatal("oversized header block accepted")
	}
}
