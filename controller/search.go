package controller

import (
	"bytes"
	"time"

	"github.com/boxmap/boxmap/controller/server"
)

func (c *Controller) cmdIntersects(msg *server.Message) (string, error) {
	start := time.Now()
	vs, t, err := parseSearchScanBaseTokens("intersects", msg.Values[1:])
	if err != nil {
		return "", err
	}
	var minX, minY, maxX, maxY float64
	if vs, minX, minY, maxX, maxY, err = parseBox(vs); err != nil {
		return "", err
	}
	if len(vs) != 0 {
		return "", errInvalidNumberOfArguments
	}
	wr := &bytes.Buffer{}
	sw, err := c.newScanWriter(wr, msg, t.key, t.output, t.glob, t.limit)
	if err != nil {
		return "", err
	}
	if msg.OutputType == server.JSON {
		wr.WriteString(`{"ok":true`)
	}
	sw.writeHead()
	if sw.col != nil {
		sw.col.Intersects(minX, minY, maxX, maxY, func(id string, minX, minY, maxX, maxY float64) bool {
			return sw.writeObject(id, minX, minY, maxX, maxY)
		})
	}
	sw.writeFoot()
	if msg.OutputType == server.JSON {
		wr.WriteString(`,"elapsed":"` + time.Now().Sub(start).String() + "\"}")
		return wr.String(), nil
	}
	return sw.respValue()
}
