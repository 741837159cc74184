package controller

import (
	"bytes"
	"math"
	"strconv"
	"time"

	"github.com/tidwall/resp"

	"github.com/boxmap/boxmap/controller/collection"
	"github.com/boxmap/boxmap/controller/server"
)

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, errInvalidArgument(s)
	}
	return f, nil
}

func parseBox(vs []resp.Value) (nvs []resp.Value, minX, minY, maxX, maxY float64, err error) {
	var ok bool
	var sminx, sminy, smaxx, smaxy string
	if vs, sminx, ok = tokenval(vs); !ok || sminx == "" {
		err = errInvalidNumberOfArguments
		return
	}
	if vs, sminy, ok = tokenval(vs); !ok || sminy == "" {
		err = errInvalidNumberOfArguments
		return
	}
	if vs, smaxx, ok = tokenval(vs); !ok || smaxx == "" {
		err = errInvalidNumberOfArguments
		return
	}
	if vs, smaxy, ok = tokenval(vs); !ok || smaxy == "" {
		err = errInvalidNumberOfArguments
		return
	}
	if minX, err = parseFloat(sminx); err != nil {
		return
	}
	if minY, err = parseFloat(sminy); err != nil {
		return
	}
	if maxX, err = parseFloat(smaxx); err != nil {
		return
	}
	if maxY, err = parseFloat(smaxy); err != nil {
		return
	}
	nvs = vs
	return
}

func (c *Controller) cmdBuild(msg *server.Message) (res string, err error) {
	start := time.Now()
	vs := msg.Values[1:]
	var ok bool
	var key, sdepth string
	if vs, key, ok = tokenval(vs); !ok || key == "" {
		err = errInvalidNumberOfArguments
		return
	}
	var minX, minY, maxX, maxY float64
	if vs, minX, minY, maxX, maxY, err = parseBox(vs); err != nil {
		return
	}
	if vs, sdepth, ok = tokenval(vs); !ok || sdepth == "" {
		err = errInvalidNumberOfArguments
		return
	}
	if len(vs) != 0 {
		err = errInvalidNumberOfArguments
		return
	}
	depth, err := strconv.Atoi(sdepth)
	if err != nil {
		err = errInvalidArgument(sdepth)
		return
	}
	col, err := collection.New(minX, minY, maxX, maxY, depth)
	if err != nil {
		return "", err
	}
	c.setCol(key, col)
	switch msg.OutputType {
	case server.JSON:
		res = `{"ok":true,"elapsed":"` + time.Now().Sub(start).String() + "\"}"
	case server.RESPOutput:
		res = "+OK\r\n"
	}
	return
}

func (c *Controller) cmdAdd(msg *server.Message) (res string, err error) {
	start := time.Now()
	vs := msg.Values[1:]
	var ok bool
	var key, id string
	if vs, key, ok = tokenval(vs); !ok || key == "" {
		err = errInvalidNumberOfArguments
		return
	}
	if vs, id, ok = tokenval(vs); !ok || id == "" {
		err = errInvalidNumberOfArguments
		return
	}
	var minX, minY, maxX, maxY float64
	if vs, minX, minY, maxX, maxY, err = parseBox(vs); err != nil {
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
	col.ReplaceOrInsert(id, minX, minY, maxX, maxY)
	switch msg.OutputType {
	case server.JSON:
		res = `{"ok":true,"elapsed":"` + time.Now().Sub(start).String() + "\"}"
	case server.RESPOutput:
		res = "+OK\r\n"
	}
	return
}

func (c *Controller) cmdDel(msg *server.Message) (res string, err error) {
	start := time.Now()
	vs := msg.Values[1:]
	var ok bool
	var key, id string
	if vs, key, ok = tokenval(vs); !ok || key == "" {
		err = errInvalidNumberOfArguments
		return
	}
	if vs, id, ok = tokenval(vs); !ok || id == "" {
		err = errInvalidNumberOfArguments
		return
	}
	if len(vs) != 0 {
		err = errInvalidNumberOfArguments
		return
	}
	found := false
	col := c.getCol(key)
	if col != nil {
		if _, _, _, _, ok := col.Remove(id); ok {
			found = true
		}
	}
	switch msg.OutputType {
	case server.JSON:
		res = `{"ok":true,"elapsed":"` + time.Now().Sub(start).String() + "\"}"
	case server.RESPOutput:
		if found {
			res = ":1\r\n"
		} else {
			res = ":0\r\n"
		}
	}
	return
}

func (c *Controller) cmdDrop(msg *server.Message) (res string, err error) {
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
	updated := c.deleteCol(key) != nil
	switch msg.OutputType {
	case server.JSON:
		res = `{"ok":true,"elapsed":"` + time.Now().Sub(start).String() + "\"}"
	case server.RESPOutput:
		if updated {
			res = ":1\r\n"
		} else {
			res = ":0\r\n"
		}
	}
	return
}

func (c *Controller) cmdFlushDB(msg *server.Message) (res string, err error) {
	start := time.Now()
	vs := msg.Values[1:]
	if len(vs) != 0 {
		err = errInvalidNumberOfArguments
		return
	}
	c.reset()
	switch msg.OutputType {
	case server.JSON:
		res = `{"ok":true,"elapsed":"` + time.Now().Sub(start).String() + "\"}"
	case server.RESPOutput:
		res = "+OK\r\n"
	}
	return
}

func (c *Controller) cmdGet(msg *server.Message) (string, error) {
	start := time.Now()
	vs := msg.Values[1:]
	var ok bool
	var key, id string
	if vs, key, ok = tokenval(vs); !ok || key == "" {
		return "", errInvalidNumberOfArguments
	}
	if vs, id, ok = tokenval(vs); !ok || id == "" {
		return "", errInvalidNumberOfArguments
	}
	if len(vs) != 0 {
		return "", errInvalidNumberOfArguments
	}
	col := c.getCol(key)
	if col == nil {
		if msg.OutputType == server.RESPOutput {
			return "$-1\r\n", nil
		}
		return "", errKeyNotFound
	}
	minX, minY, maxX, maxY, ok := col.Get(id)
	if !ok {
		if msg.OutputType == server.RESPOutput {
			return "$-1\r\n", nil
		}
		return "", errIDNotFound
	}
	switch msg.OutputType {
	case server.JSON:
		var buf bytes.Buffer
		buf.WriteString(`{"ok":true,"bounds":[`)
		buf.WriteString(jsonFloat(minX) + "," + jsonFloat(minY) + "," + jsonFloat(maxX) + "," + jsonFloat(maxY))
		buf.WriteString(`],"refs":` + strconv.Itoa(col.RefCount(id)))
		buf.WriteString(`,"elapsed":"` + time.Now().Sub(start).String() + "\"}")
		return buf.String(), nil
	case server.RESPOutput:
		oval := resp.ArrayValue([]resp.Value{
			resp.FloatValue(minX),
			resp.FloatValue(minY),
			resp.FloatValue(maxX),
			resp.FloatValue(maxY),
		})
		data, err := oval.MarshalRESP()
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", nil
}

func (c *Controller) cmdBounds(msg *server.Message) (string, error) {
	start := time.Now()
	vs := msg.Values[1:]
	var ok bool
	var key string
	if vs, key, ok = tokenval(vs); !ok || key == "" {
		return "", errInvalidNumberOfArguments
	}
	if len(vs) != 0 {
		return "", errInvalidNumberOfArguments
	}
	col := c.getCol(key)
	if col == nil {
		if msg.OutputType == server.RESPOutput {
			return "$-1\r\n", nil
		}
		return "", errKeyNotFound
	}
	minX, minY, maxX, maxY := col.Bounds()
	ox, oy, scale := col.Window()
	switch msg.OutputType {
	case server.JSON:
		var buf bytes.Buffer
		buf.WriteString(`{"ok":true,"bounds":[`)
		buf.WriteString(jsonFloat(minX) + "," + jsonFloat(minY) + "," + jsonFloat(maxX) + "," + jsonFloat(maxY))
		buf.WriteString(`],"depth":` + strconv.Itoa(col.Depth()))
		buf.WriteString(`,"cells":` + strconv.Itoa(col.Leaves()))
		buf.WriteString(`,"window":{"x":` + jsonFloat(ox) + `,"y":` + jsonFloat(oy) + `,"scale":` + jsonFloat(scale) + `}`)
		buf.WriteString(`,"elapsed":"` + time.Now().Sub(start).String() + "\"}")
		return buf.String(), nil
	case server.RESPOutput:
		oval := resp.ArrayValue([]resp.Value{
			resp.ArrayValue([]resp.Value{
				resp.FloatValue(minX),
				resp.FloatValue(minY),
				resp.FloatValue(maxX),
				resp.FloatValue(maxY),
			}),
			resp.IntegerValue(col.Depth()),
			resp.IntegerValue(col.Leaves()),
			resp.ArrayValue([]resp.Value{
				resp.FloatValue(ox),
				resp.FloatValue(oy),
				resp.FloatValue(scale),
			}),
		})
		data, err := oval.MarshalRESP()
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", nil
}
