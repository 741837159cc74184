package server

import (
	"bufio"
	"io"
	"net"
	"strings"
	"testing"
	"time"
)

func reader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestReadMultiBulk(t *testing.T) {
	msg, err := readMessage(reader("*3\r\n$3\r\nADD\r\n$5\r\nmymap\r\n$3\r\nabc\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Command != "add" {
		t.Fatalf("expected 'add', got %q", msg.Command)
	}
	if msg.ConnType != RESP || msg.OutputType != RESPOutput {
		t.Fatal("expected RESP connection")
	}
	if len(msg.Values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(msg.Values))
	}
	if msg.Values[2].String() != "abc" {
		t.Fatalf("expected 'abc', got %q", msg.Values[2].String())
	}
}

func TestReadMultiBulkBadSize(t *testing.T) {
	if _, err := readMessage(reader("*1\r\n$-5\r\nxx\r\n")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestReadTelnet(t *testing.T) {
	msg, err := readMessage(reader("ADD mymap abc 1 2 3 4\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Command != "add" {
		t.Fatalf("expected 'add', got %q", msg.Command)
	}
	if msg.ConnType != Telnet || msg.OutputType != JSON {
		t.Fatal("expected telnet connection")
	}
	if len(msg.Values) != 7 {
		t.Fatalf("expected 7 values, got %d", len(msg.Values))
	}
}

func TestTokenizeQuotes(t *testing.T) {
	args, err := tokenizeLine(`set "hello world" 'it\'s' plain`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"set", "hello world", "it's", "plain"}
	if len(args) != len(want) {
		t.Fatalf("expected %d args, got %d: %v", len(want), len(args), args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg %d: expected %q, got %q", i, want[i], args[i])
		}
	}
}

func TestTokenizeUnbalanced(t *testing.T) {
	if _, err := tokenizeLine(`set "oops`); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := tokenizeLine(`set "a"b`); err == nil {
		t.Fatal("expected an error")
	}
}

func TestServeStopsOnClosedListener(t *testing.T) {
	lnc := make(chan net.Listener, 1)
	errc := make(chan error, 1)
	handler := func(conn *Conn, msg *Message, w io.Writer) error { return nil }
	go func() {
		errc <- ListenAndServe("127.0.0.1", 0, func() bool { return false }, handler, lnc)
	}()
	select {
	case ln := <-lnc:
		ln.Close()
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	select {
	case err := <-errc:
		if err == nil {
			t.Fatal("expected an error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server kept accepting after close")
	}
}

func TestTokenizeEmpty(t *testing.T) {
	args, err := tokenizeLine("   ")
	if err != nil {
		t.Fatal(err)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}
