package controller

import (
	"errors"
	"time"

	"github.com/boxmap/boxmap/controller/server"
)

func (c *Controller) cmdWindow(msg *server.Message) (res string, err error) {
	start := time.Now()
	vs := msg.Values[1:]
	var ok bool
	var key, ssx, ssy, sscale string
	if vs, key, ok = tokenval(vs); !ok || key == "" {
		err = errInvalidNumberOfArguments
		return
	}
	if vs, ssx, ok = tokenval(vs); !ok || ssx == "" {
		err = errInvalidNumberOfArguments
		return
	}
	if vs, ssy, ok = tokenval(vs); !ok || ssy == "" {
		err = errInvalidNumberOfArguments
		return
	}
	if vs, sscale, ok = tokenval(vs); !ok || sscale == "" {
		err = errInvalidNumberOfArguments
		return
	}
	if len(vs) != 0 {
		err = errInvalidNumberOfArguments
		return
	}
	var sx, sy, scale float64
	if sx, err = parseFloat(ssx); err != nil {
		return
	}
	if sy, err = parseFloat(ssy); err != nil {
		return
	}
	if scale, err = parseFloat(sscale); err != nil {
		return
	}
	if scale == 0 {
		err = errors.New("scale must be nonzero")
		return
	}
	col := c.getCol(key)
	if col == nil {
		err = errKeyNotFound
		return
	}
	col.SetWindow(sx, sy, scale)
	res = server.OKMessage(msg, start)
	return
}

func (c *Controller) cmdResetWindow(msg *server.Message) (res string, err error) {
	start := time.Now()
	vs := msg.Values[1:]
	var ok bool
	var key string
	if vs, key, ok = tokenval(vs); !ok || key == "" {
		err = errInvalidNumberOfArguments
		return
	}
	if len(vs) != 0 {
		err = errInvalidNumberOfArguments
		return
	}
	col := c.getCol(key)
	if col == nil {
		err = errKeyNotFound
		return
	}
	col.ResetWindow()
	res = server.OKMessage(msg, start)
	return
}
