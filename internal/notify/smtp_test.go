package notify

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/formpost/formpost/internal/model"
)

func TestNewSMTPNotifier_ResolvesHosts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  SMTPConfig
		want string
	}{
		{"gmail", SMTPConfig{Service: "gmail"}, "smtp.gmail.com:465"},
		{"case insensitive", SMTPConfig{Service: "Outlook"}, "smtp-mail.outlook.com:587"},
		{"port override", SMTPConfig{Service: "gmail", Port: 587}, "smtp.gmail.com:587"},
		{"explicit host", SMTPConfig{Service: "gmail", Host: "mail.internal", Port: 2525}, "mail.internal:2525"},
		{"host default port", SMTPConfig{Host: "mail.internal"}, "mail.internal:587"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewSMTPNotifier(tt.cfg)
			if err != nil {
				t.Fatalf("NewSMTPNotifier failed: %v", err)
			}
			if got := n.Addr(); got != tt.want {
				t.Errorf("Addr = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := NewSMTPNotifier(SMTPConfig{Service: "carrier-pigeon"}); !errors.Is(err, ErrUnknownService) {
		t.Errorf("error = %v, want ErrUnknownService", err)
	}
}

func TestNewSMTPNotifier_FromDefaultsToUser(t *testing.T) {
	t.Parallel()

	n, _ := NewSMTPNotifier(SMTPConfig{Service: "gmail", Username: "me@gmail.com"})
	if n.from != "me@gmail.com" {
		t.Errorf("from = %q, want me@gmail.com", n.from)
	}
}

// fakeSMTP accepts a single session and records the DATA payload.
type fakeSMTP struct {
	ln   net.Listener
	mu   sync.Mutex
	rcpt string
	data string
	done chan struct{}
}

func newFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeSMTP{ln: ln, done: make(chan struct{})}
	t.Cleanup(func() { ln.Close() })
	go s.serve()
	return s
}

func (s *fakeSMTP) serve() {
	defer close(s.done)
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	tc := textproto.NewConn(conn)
	_ = tc.PrintfLine("220 localhost ESMTP")
	for {
		line, err := tc.ReadLine()
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		switch cmd {
		case "EHLO", "HELO":
			_ = tc.PrintfLine("250-localhost")
			_ = tc.PrintfLine("250 AUTH PLAIN")
		case "AUTH":
			_ = tc.PrintfLine("235 2.7.0 Authentication successful")
		case "MAIL":
			_ = tc.PrintfLine("250 OK")
		case "RCPT":
			s.mu.Lock()
			s.rcpt = line
			s.mu.Unlock()
			_ = tc.PrintfLine("250 OK")
		case "DATA":
			_ = tc.PrintfLine("354 go ahead")
			body, err := tc.ReadDotBytes()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.data = string(body)
			s.mu.Unlock()
			_ = tc.PrintfLine("250 queued")
		case "QUIT":
			_ = tc.PrintfLine("221 bye")
			return
		default:
			_ = tc.PrintfLine("502 unknown")
		}
	}
}

func TestSMTPNotifier_Send(t *testing.T) {
	t.Parallel()

	srv := newFakeSMTP(t)
	addr := srv.ln.Addr().(*net.TCPAddr)

	n, err := NewSMTPNotifier(SMTPConfig{
		Host:     "127.0.0.1",
		Port:     addr.Port,
		Username: "bot@example.com",
		Password: "pw",
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewSMTPNotifier failed: %v", err)
	}

	owner := &model.Owner{ID: "o1", Email: "owner@example.com"}
	fields := model.Fields{"name": model.StringValue("Ada"), "message": model.StringValue("hi\nthere")}
	if err := n.Send(context.Background(), owner, fields); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case <-srv.done:
	case <-time.After(5 * time.Second):
		t.Fatal("fake server did not finish")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if !strings.Contains(srv.rcpt, "owner@example.com") {
		t.Errorf("RCPT = %q", srv.rcpt)
	}
	for _, want := range []string{
		"Subject: New Form Submission",
		"From: bot@example.com",
		"multipart/alternative",
		"text/plain",
		"text/html",
		"Name: Ada",
	} {
		if !strings.Contains(srv.data, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSMTPNotifier_DialFailure(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	n, _ := NewSMTPNotifier(SMTPConfig{Host: "127.0.0.1", Port: port, Timeout: time.Second})
	err = n.Send(context.Background(), &model.Owner{Email: "a@example.com"}, model.Fields{})
	if err == nil {
		t.Fatal("expected dial error")
	}
}

func TestBuildMessage_Headers(t *testing.T) {
	t.Parallel()

	n, _ := NewSMTPNotifier(SMTPConfig{Host: "mail.internal", From: "forms@example.com"})
	n.boundary = func() string { return "BOUNDARY" }

	msg, err := n.buildMessage("owner@example.com", model.Fields{"name": model.StringValue("Ada")})
	if err != nil {
		t.Fatalf("buildMessage failed: %v", err)
	}

	r := textproto.NewReader(bufio.NewReader(strings.NewReader(string(msg))))
	hdr, err := r.ReadMIMEHeader()
	if err != nil {
		t.Fatalf("parse headers: %v", err)
	}
	if hdr.Get("To") != "owner@example.com" || hdr.Get("From") != "forms@example.com" {
		t.Errorf("unexpected headers %v", hdr)
	}
	if hdr.Get("Content-Type") != `multipart/alternative; boundary="BOUNDARY"` {
		t.Errorf("Content-Type = %q", hdr.Get("Content-Type"))
	}
}
