package controller

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/boxmap/boxmap/controller/collection"
	"github.com/boxmap/boxmap/controller/log"
	"github.com/boxmap/boxmap/controller/server"
)

const (
	massArea  = 10000.0
	massDepth = 6
)

// MASSINSERT keys count
// Fills keys with random boxes. Dev mode only.
func (c *Controller) cmdMassInsert(msg *server.Message) (res string, err error) {
	start := time.Now()
	vs := msg.Values[1:]
	var ok bool
	var skeys, scount string
	if vs, skeys, ok = tokenval(vs); !ok || skeys == "" {
		return "", errInvalidNumberOfArguments
	}
	if vs, scount, ok = tokenval(vs); !ok || scount == "" {
		return "", errInvalidNumberOfArguments
	}
	if len(vs) != 0 {
		return "", errInvalidNumberOfArguments
	}
	keys, err := strconv.Atoi(skeys)
	if err != nil || keys < 1 {
		return "", errInvalidArgument(skeys)
	}
	count, err := strconv.Atoi(scount)
	if err != nil || count < 1 {
		return "", errInvalidArgument(scount)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var inserted int
	for i := 0; i < keys; i++ {
		key := fmt.Sprintf("mkey:%d", i)
		col := c.getCol(key)
		if col == nil {
			col, err = collection.New(0, 0, massArea, massArea, massDepth)
			if err != nil {
				return "", err
			}
			c.setCol(key, col)
		}
		for j := 0; j < count; j++ {
			id := fmt.Sprintf("id:%d", j)
			x := rand.Float64() * (massArea - 100)
			y := rand.Float64() * (massArea - 100)
			w := rand.Float64()*99 + 1
			h := rand.Float64()*99 + 1
			col.ReplaceOrInsert(id, x, y, x+w, y+h)
			inserted++
			if inserted%100000 == 0 {
				log.Infof("massinsert: %d objects", inserted)
			}
		}
	}
	log.Infof("massinsert: done, %d objects in %d keys", inserted, keys)
	return server.OKMessage(msg, start), nil
}
