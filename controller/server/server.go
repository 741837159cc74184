package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/resp"

	"github.com/boxmap/boxmap/controller/log"
	"github.com/boxmap/boxmap/core"
)

// This phrase is copied nearly verbatim from Redis.
// https://github.com/antirez/redis/blob/cf42c48adcea05c1bd4b939fcd36a01f23ec6303/src/networking.c
var deniedMessage = []byte(strings.TrimSpace(`
ACCESS DENIED
Boxmap is running in protected mode because protected mode is enabled, no host
address was specified, no authentication password is requested to clients. In
this mode connections are only accepted from the loopback interface. If you
want to connect from external computers to Boxmap you may adopt one of the
following solutions:

1) Disable protected mode by sending the command 'CONFIG SET protected-mode no'
   from the loopback interface by connecting to Boxmap from the same host
   the server is running, however MAKE SURE Boxmap is not publicly accessible
   from internet if you do so. Use CONFIG REWRITE to make this change
   permanent.
2) Alternatively you can just disable the protected mode by editing the Boxmap
   configuration file, and setting the 'protected-mode' option to 'no', and
   then restarting the server.
3) If you started the server manually just for testing, restart it with the
   '--protected-mode no' option.
4) Use a host address or an authentication password.

NOTE: You only need to do one of the above things in order for the server
to start accepting connections from the outside.
`) + "\r\n")

// ConnType is the protocol the connection arrived on.
type ConnType int

const (
	Null ConnType = iota
	RESP
	Telnet
)

// OutputType is the reply encoding for a connection.
type OutputType int

const (
	NullOutput OutputType = iota
	JSON
	RESPOutput
)

// Conn wraps a client connection and its session state.
type Conn struct {
	net.Conn
	Authenticated bool
	Output        OutputType
}

// Message is one parsed inbound command.
type Message struct {
	Command    string
	Values     []resp.Value
	ConnType   ConnType
	OutputType OutputType
}

var errInvalidMessage = errors.New("invalid message")

// OKMessage returns a plain success reply in the message's output type.
func OKMessage(msg *Message, start time.Time) string {
	switch msg.OutputType {
	case JSON:
		return `{"ok":true,"elapsed":"` + time.Now().Sub(start).String() + `"}`
	case RESPOutput:
		return "+OK\r\n"
	}
	return ""
}

// ListenAndServe starts the server at the specified address. When lnc is
// non-nil it receives the bound listener, which is handy for tests that
// bind port zero.
func ListenAndServe(
	host string, port int,
	protected func() bool,
	handler func(conn *Conn, msg *Message, w io.Writer) error,
	lnc chan net.Listener,
) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return err
	}
	if lnc != nil {
		lnc <- ln
	}
	log.Infof("The server is now ready to accept connections on port %d", ln.Addr().(*net.TCPAddr).Port)
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Error(err)
			return err
		}
		go handleConn(&Conn{Conn: conn}, protected, handler)
	}
}

func handleConn(
	conn *Conn,
	protected func() bool,
	handler func(conn *Conn, msg *Message, w io.Writer) error,
) {
	addr := conn.RemoteAddr().String()
	if core.ShowDebugMessages {
		log.Debugf("opened connection: %s", addr)
		defer func() {
			log.Debugf("closed connection: %s", addr)
		}()
	}
	if !strings.HasPrefix(addr, "127.0.0.1:") && !strings.HasPrefix(addr, "[::1]:") {
		if protected() {
			// This is a protected server. Only loopback is allowed.
			conn.Write(deniedMessage)
			conn.Close()
			return
		}
	}
	defer conn.Close()
	rd := bufio.NewReader(conn)
	for {
		msg, err := readMessage(rd)
		if err != nil {
			if err == io.EOF {
				return
			}
			if strings.Contains(err.Error(), "use of closed network connection") {
				return
			}
			log.Error(err)
			return
		}
		if msg == nil || msg.Command == "" {
			continue
		}
		if msg.Command == "quit" {
			if msg.OutputType == RESPOutput {
				io.WriteString(conn, "+OK\r\n")
			}
			return
		}
		if err := handler(conn, msg, conn); err != nil {
			log.Error(err)
			return
		}
	}
}

// readMessage reads one command from the wire. A leading '*' marks a
// RESP multibulk, anything else is treated as a telnet style line.
func readMessage(rd *bufio.Reader) (*Message, error) {
	b, err := rd.Peek(1)
	if err != nil {
		return nil, err
	}
	if b[0] == '*' {
		return readMultiBulkMessage(rd)
	}
	return readTelnetMessage(rd)
}

func readMultiBulkMessage(rd *bufio.Reader) (*Message, error) {
	line, err := readLine(rd)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil || n < 0 || n > 1024*1024 {
		return nil, errInvalidMessage
	}
	values := make([]resp.Value, 0, n)
	for i := 0; i < n; i++ {
		line, err := readLine(rd)
		if err != nil {
			return nil, err
		}
		if len(line) == 0 || line[0] != '$' {
			return nil, errInvalidMessage
		}
		sz, err := strconv.Atoi(line[1:])
		if err != nil || sz < 0 || sz > 64*1024*1024 {
			return nil, errInvalidMessage
		}
		buf := make([]byte, sz+2)
		if _, err := io.ReadFull(rd, buf); err != nil {
			return nil, err
		}
		if buf[sz] != '\r' || buf[sz+1] != '\n' {
			return nil, errInvalidMessage
		}
		values = append(values, resp.BytesValue(buf[:sz]))
	}
	if len(values) == 0 {
		return &Message{ConnType: RESP, OutputType: RESPOutput}, nil
	}
	return &Message{
		Command:    strings.ToLower(values[0].String()),
		Values:     values,
		ConnType:   RESP,
		OutputType: RESPOutput,
	}, nil
}

func readTelnetMessage(rd *bufio.Reader) (*Message, error) {
	line, err := readLine(rd)
	if err != nil {
		return nil, err
	}
	args, err := tokenizeLine(line)
	if err != nil {
		return nil, err
	}
	msg := &Message{ConnType: Telnet, OutputType: JSON}
	if len(args) == 0 {
		return msg, nil
	}
	msg.Command = strings.ToLower(args[0])
	for _, arg := range args {
		msg.Values = append(msg.Values, resp.StringValue(arg))
	}
	return msg, nil
}

func readLine(rd *bufio.Reader) (string, error) {
	line, err := rd.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// tokenizeLine splits a telnet line into arguments, honoring single and
// double quotes with backslash escapes.
func tokenizeLine(line string) ([]string, error) {
	var args []string
	for i := 0; i < len(line); i++ {
		switch c := line[i]; c {
		case ' ', '\t':
			continue
		case '"', '\'':
			quote := c
			i++
			var arg []byte
			for ; i < len(line); i++ {
				c := line[i]
				if c == '\\' && i+1 < len(line) {
					i++
					switch line[i] {
					case 'n':
						arg = append(arg, '\n')
					case 'r':
						arg = append(arg, '\r')
					case 't':
						arg = append(arg, '\t')
					default:
						arg = append(arg, line[i])
					}
					continue
				}
				if c == quote {
					break
				}
				arg = append(arg, c)
			}
			if i >= len(line) {
				return nil, errInvalidMessage
			}
			if i+1 < len(line) && line[i+1] != ' ' && line[i+1] != '\t' {
				return nil, errInvalidMessage
			}
			args = append(args, string(arg))
		default:
			start := i
			for ; i < len(line); i++ {
				if line[i] == ' ' || line[i] == '\t' {
					break
				}
			}
			args = append(args, line[start:i])
		}
	}
	return args, nil
}
