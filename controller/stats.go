package controller

import (
	"encoding/json"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/tidwall/resp"

	"github.com/boxmap/boxmap/controller/collection"
	"github.com/boxmap/boxmap/controller/server"
	"github.com/boxmap/boxmap/core"
)

// respValuesSimpleMap flattens a map into alternating key/value entries
// in key order.
func respValuesSimpleMap(m map[string]interface{}) []resp.Value {
	var keys []string
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var vals []resp.Value
	for _, key := range keys {
		vals = append(vals, resp.StringValue(key))
		switch val := m[key].(type) {
		case []float64:
			var fvals []resp.Value
			for _, f := range val {
				fvals = append(fvals, resp.FloatValue(f))
			}
			vals = append(vals, resp.ArrayValue(fvals))
		default:
			vals = append(vals, resp.AnyValue(val))
		}
	}
	return vals
}

func (c *Controller) statsCollection(col *collection.Collection) map[string]interface{} {
	minX, minY, maxX, maxY := col.Bounds()
	ox, oy, scale := col.Window()
	return map[string]interface{}{
		"num_objects":    col.Count(),
		"in_memory_size": col.TotalWeight(),
		"depth":          col.Depth(),
		"num_cells":      col.Leaves(),
		"bounds":         []float64{minX, minY, maxX, maxY},
		"window":         []float64{ox, oy, scale},
	}
}

func (c *Controller) cmdStats(msg *server.Message) (res string, err error) {
	start := time.Now()
	vs := msg.Values[1:]
	var ms = []map[string]interface{}{}
	if len(vs) == 0 {
		return "", errInvalidNumberOfArguments
	}
	var vals []resp.Value
	var key string
	var ok bool
	for {
		vs, key, ok = tokenval(vs)
		if !ok {
			break
		}
		col := c.getCol(key)
		if col != nil {
			m := c.statsCollection(col)
			ms = append(ms, m)
			if msg.OutputType == server.RESPOutput {
				vals = append(vals, resp.ArrayValue(respValuesSimpleMap(m)))
			}
		} else {
			ms = append(ms, nil)
			if msg.OutputType == server.RESPOutput {
				vals = append(vals, resp.NullValue())
			}
		}
	}
	switch msg.OutputType {
	case server.JSON:
		data, err := json.Marshal(ms)
		if err != nil {
			return "", err
		}
		res = `{"ok":true,"stats":` + string(data) + `,"elapsed":"` + time.Now().Sub(start).String() + "\"}"
	case server.RESPOutput:
		data, err := resp.ArrayValue(vals).MarshalRESP()
		if err != nil {
			return "", err
		}
		res = string(data)
	}
	return res, nil
}

func (c *Controller) cmdServer(msg *server.Message) (res string, err error) {
	start := time.Now()
	if len(msg.Values) != 1 {
		return "", errInvalidNumberOfArguments
	}
	m := make(map[string]interface{})
	m["id"] = c.config.ServerID
	m["version"] = core.Version
	m["pid"] = os.Getpid()
	m["read_only"] = c.config.ReadOnly

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m["heap_size"] = mem.HeapAlloc
	m["avg_item_size"] = 0
	m["num_collections"] = c.cols.Len()

	var count int
	var size int
	c.scanGreaterOrEqual("", func(key string, col *collection.Collection) bool {
		count += col.Count()
		size += col.TotalWeight()
		return true
	})
	m["num_objects"] = count
	m["in_memory_size"] = size
	if count > 0 {
		m["avg_item_size"] = size / count
	}

	switch msg.OutputType {
	case server.JSON:
		data, err := json.Marshal(m)
		if err != nil {
			return "", err
		}
		res = `{"ok":true,"stats":` + string(data) + `,"elapsed":"` + time.Now().Sub(start).String() + "\"}"
	case server.RESPOutput:
		vals := respValuesSimpleMap(m)
		data, err := resp.ArrayValue(vals).MarshalRESP()
		if err != nil {
			return "", err
		}
		res = string(data)
	}
	return res, nil
}

func (c *Controller) cmdOutput(msg *server.Message, conn *server.Conn) (res string, err error) {
	start := time.Now()
	vs := msg.Values[1:]
	var arg string
	var ok bool
	if len(vs) != 0 {
		if _, arg, ok = tokenval(vs); !ok || arg == "" {
			return "", errInvalidNumberOfArguments
		}
	}
	if arg == "" {
		switch msg.OutputType {
		case server.JSON:
			return `{"ok":true,"output":"json","elapsed":"` + time.Now().Sub(start).String() + `"}`, nil
		case server.RESPOutput:
			return "+resp\r\n", nil
		}
		return "", nil
	}
	switch arg {
	default:
		return "", errInvalidArgument(arg)
	case "json":
		conn.Output = server.JSON
		msg.OutputType = server.JSON
	case "resp":
		conn.Output = server.RESPOutput
		msg.OutputType = server.RESPOutput
	}
	return server.OKMessage(msg, start), nil
}
