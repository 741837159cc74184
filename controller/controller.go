package controller

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/btree"
	"github.com/tidwall/resp"

	"github.com/boxmap/boxmap/controller/collection"
	"github.com/boxmap/boxmap/controller/log"
	"github.com/boxmap/boxmap/controller/server"
	"github.com/boxmap/boxmap/core"
)

type collectionT struct {
	Key        string
	Collection *collection.Collection
}

func (col *collectionT) Less(item btree.Item, ctx interface{}) bool {
	return col.Key < item.(*collectionT).Key
}

// Controller is a boxmap controller
type Controller struct {
	mu     sync.RWMutex
	host   string
	port   int
	dir    string
	cols   *btree.BTree
	config Config
}

// ListenAndServe starts a new boxmap server
func ListenAndServe(host string, port int, dir string) error {
	return ListenAndServeEx(host, port, dir, nil)
}

// ListenAndServeEx is like ListenAndServe but can hand back the bound
// listener for tests.
func ListenAndServeEx(host string, port int, dir string, lnc chan net.Listener) error {
	log.Infof("Server started, Boxmap version %s, git %s", core.Version, core.GitSHA)
	c := &Controller{
		host: host,
		port: port,
		dir:  dir,
		cols: btree.New(16, nil),
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	if err := c.loadConfig(); err != nil {
		return err
	}
	handler := func(conn *server.Conn, msg *server.Message, w io.Writer) error {
		return c.handleInputCommand(conn, msg, w)
	}
	protected := func() bool {
		if core.ProtectedMode == "no" {
			// --protected-mode no
			return false
		}
		if host != "" && host != "127.0.0.1" && host != "::1" && host != "localhost" {
			// -h address
			return false
		}
		c.mu.RLock()
		is := c.config.ProtectedMode != "no" && c.config.RequirePass == ""
		c.mu.RUnlock()
		return is
	}
	return server.ListenAndServe(host, port, protected, handler, lnc)
}

func (c *Controller) setCol(key string, col *collection.Collection) {
	c.cols.ReplaceOrInsert(&collectionT{Key: key, Collection: col})
}

func (c *Controller) getCol(key string) *collection.Collection {
	item := c.cols.Get(&collectionT{Key: key})
	if item == nil {
		return nil
	}
	return item.(*collectionT).Collection
}

func (c *Controller) scanGreaterOrEqual(key string, iterator func(key string, col *collection.Collection) bool) {
	c.cols.AscendGreaterOrEqual(&collectionT{Key: key}, func(item btree.Item) bool {
		col := item.(*collectionT)
		return iterator(col.Key, col.Collection)
	})
}

func (c *Controller) deleteCol(key string) *collection.Collection {
	i := c.cols.Delete(&collectionT{Key: key})
	if i == nil {
		return nil
	}
	return i.(*collectionT).Collection
}

func (c *Controller) handleInputCommand(conn *server.Conn, msg *server.Message, w io.Writer) error {
	start := time.Now()
	if conn.Output != server.NullOutput {
		msg.OutputType = conn.Output
	}
	writeOutput := func(res string) error {
		switch msg.ConnType {
		default:
			err := fmt.Errorf("unsupported conn type: %v", msg.ConnType)
			log.Error(err)
			return err
		case server.RESP:
			var err error
			if msg.OutputType == server.JSON {
				_, err = fmt.Fprintf(w, "$%d\r\n%s\r\n", len(res), res)
			} else {
				_, err = io.WriteString(w, res)
			}
			return err
		case server.Telnet:
			_, err := io.WriteString(w, res+"\r\n")
			return err
		}
	}
	// Ping. Just send back the response. No need to put through the pipeline.
	if msg.Command == "ping" {
		switch msg.OutputType {
		case server.JSON:
			return writeOutput(`{"ok":true,"ping":"pong","elapsed":"` + time.Now().Sub(start).String() + `"}`)
		case server.RESPOutput:
			return writeOutput("+PONG\r\n")
		}
		return nil
	}

	writeErr := func(err error) error {
		switch msg.OutputType {
		case server.JSON:
			return writeOutput(`{"ok":false,"err":` + jsonString(err.Error()) + `,"elapsed":"` + time.Now().Sub(start).String() + "\"}")
		case server.RESPOutput:
			if err == errInvalidNumberOfArguments {
				return writeOutput("-ERR wrong number of arguments for '" + msg.Command + "' command\r\n")
			}
			v, _ := resp.ErrorValue(errors.New("ERR " + err.Error())).MarshalRESP()
			return writeOutput(string(v))
		}
		return nil
	}

	if !conn.Authenticated || msg.Command == "auth" {
		c.mu.RLock()
		requirePass := c.config.RequirePass
		c.mu.RUnlock()
		if requirePass != "" {
			// This better be an AUTH command.
			if msg.Command != "auth" {
				// Just shut down the pipeline now. The less the client
				// connection knows the better.
				return writeErr(errors.New("authentication required"))
			}
			password := ""
			if len(msg.Values) > 1 {
				password = msg.Values[1].String()
			}
			if requirePass != strings.TrimSpace(password) {
				return writeErr(errors.New("invalid password"))
			}
			conn.Authenticated = true
			return writeOutput(server.OKMessage(msg, start))
		} else if msg.Command == "auth" {
			return writeErr(errors.New("invalid password"))
		}
	}

	// choose the locking strategy
	switch msg.Command {
	default:
		c.mu.RLock()
		defer c.mu.RUnlock()
	case "build", "add", "del", "drop", "flushdb", "window", "resetwindow":
		// write operations
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.config.ReadOnly {
			return writeErr(errors.New("read only"))
		}
	case "get", "keys", "scan", "intersects", "bounds", "stats", "server":
		// read operations
		c.mu.RLock()
		defer c.mu.RUnlock()
	case "readonly", "config":
		// system operations, requires a write lock.
		c.mu.Lock()
		defer c.mu.Unlock()
	case "output":
		// this is local connection operation. Locks not needed.
	case "massinsert":
		// dev operation
		// ** danger zone **
		// no locks! DEV MODE ONLY
	}

	res, err := c.command(msg, conn)
	if err != nil {
		return writeErr(err)
	}
	if res != "" {
		if err := writeOutput(res); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) reset() {
	c.cols = btree.New(16, nil)
}

func (c *Controller) command(msg *server.Message, conn *server.Conn) (res string, err error) {
	switch msg.Command {
	default:
		err = fmt.Errorf("unknown command '%s'", msg.Values[0])
	case "build":
		res, err = c.cmdBuild(msg)
	case "add":
		res, err = c.cmdAdd(msg)
	case "del":
		res, err = c.cmdDel(msg)
	case "drop":
		res, err = c.cmdDrop(msg)
	case "flushdb":
		res, err = c.cmdFlushDB(msg)
	case "get":
		res, err = c.cmdGet(msg)
	case "bounds":
		res, err = c.cmdBounds(msg)
	case "window":
		res, err = c.cmdWindow(msg)
	case "resetwindow":
		res, err = c.cmdResetWindow(msg)
	case "keys":
		res, err = c.cmdKeys(msg)
	case "scan":
		res, err = c.cmdScan(msg)
	case "intersects":
		res, err = c.cmdIntersects(msg)
	case "stats":
		res, err = c.cmdStats(msg)
	case "server":
		res, err = c.cmdServer(msg)
	case "readonly":
		res, err = c.cmdReadOnly(msg)
	case "output":
		res, err = c.cmdOutput(msg, conn)
	case "massinsert":
		if !core.DevMode {
			err = fmt.Errorf("unknown command '%s'", msg.Values[0])
			return
		}
		res, err = c.cmdMassInsert(msg)
	case "gc":
		go runtime.GC()
		res = server.OKMessage(msg, time.Now())
	case "config get":
		res, err = c.cmdConfigGet(msg)
	case "config set":
		res, err = c.cmdConfigSet(msg)
	case "config rewrite":
		res, err = c.cmdConfigRewrite(msg)
	case "config":
		err = fmt.Errorf("unknown command '%s'", msg.Values[0])
		if len(msg.Values) > 1 {
			command := msg.Values[0].String() + " " + msg.Values[1].String()
			msg.Values[1] = resp.StringValue(command)
			msg.Values = msg.Values[1:]
			msg.Command = strings.ToLower(command)
			return c.command(msg, conn)
		}
	}
	return
}
