// Package client is a simple RESP client for boxmap servers.
package client

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/tidwall/resp"
)

// Conn represents a connection to a boxmap server.
type Conn struct {
	c    net.Conn
	rd   *resp.Reader
	wr   *resp.Writer
	pool *Pool
}

// Dial connects to a boxmap server.
func Dial(addr string) (*Conn, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Conn{c: c, rd: resp.NewReader(c), wr: resp.NewWriter(c)}, nil
}

// DialTimeout connects to a boxmap server with a timeout.
func DialTimeout(addr string, timeout time.Duration) (*Conn, error) {
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	return &Conn{c: c, rd: resp.NewReader(c), wr: resp.NewWriter(c)}, nil
}

// Close will close a connection, or return it to its pool.
func (conn *Conn) Close() error {
	if conn.pool == nil {
		conn.wr.WriteMultiBulk("QUIT")
		return conn.c.Close()
	}
	return conn.pool.put(conn)
}

func (conn *Conn) SetDeadline(t time.Time) error {
	return conn.c.SetDeadline(t)
}

// Do sends a command to the server and returns the received reply.
func (conn *Conn) Do(command string, args ...interface{}) (resp.Value, error) {
	if err := conn.wr.WriteMultiBulk(command, args...); err != nil {
		conn.pool = nil
		return resp.Value{}, err
	}
	v, _, err := conn.rd.ReadValue()
	if err != nil {
		conn.pool = nil
		return resp.Value{}, err
	}
	return v, nil
}

// Pool is a simple connection pool.
type Pool struct {
	mu    sync.Mutex
	addr  string
	conns []*Conn
}

// DialPool creates a pool and verifies that the server is reachable.
func DialPool(addr string) (*Pool, error) {
	pool := &Pool{addr: addr}
	conn, err := pool.Get()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	v, err := conn.Do("PING")
	if err != nil {
		return nil, err
	}
	if v.String() != "PONG" {
		return nil, errors.New("expected 'PONG'")
	}
	return pool, nil
}

// Get borrows a connection from the pool, dialing a new one if none are
// idle.
func (pool *Pool) Get() (*Conn, error) {
	pool.mu.Lock()
	if len(pool.conns) > 0 {
		conn := pool.conns[len(pool.conns)-1]
		pool.conns = pool.conns[:len(pool.conns)-1]
		pool.mu.Unlock()
		return conn, nil
	}
	pool.mu.Unlock()
	conn, err := Dial(pool.addr)
	if err != nil {
		return nil, err
	}
	conn.pool = pool
	return conn, nil
}

func (pool *Pool) put(conn *Conn) error {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	if len(pool.conns) >= 16 {
		conn.pool = nil
		return conn.c.Close()
	}
	pool.conns = append(pool.conns, conn)
	return nil
}

// Close closes all idle connections in the pool.
func (pool *Pool) Close() error {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	for _, conn := range pool.conns {
		conn.pool = nil
		conn.c.Close()
	}
	pool.conns = nil
	return nil
}
