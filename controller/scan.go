package controller

import (
	"bytes"
	"time"

	"github.com/boxmap/boxmap/controller/server"
)

func (c *Controller) cmdScan(msg *server.Message) (string, error) {
	start := time.Now()
	vs, t, err := parseSearchScanBaseTokens("scan", msg.Values[1:])
	if err != nil {
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
		if sw.output == outputCount && sw.globEverything {
			sw.count = uint64(sw.col.Count())
		} else if sw.globs != nil && sw.globs.Limits[0] != "" {
			// an ordered scan can start at the pattern's literal prefix
			min := sw.globs.Limits[0]
			max := sw.globs.Limits[1]
			sw.col.ScanGreaterOrEqual(min, func(id string, minX, minY, maxX, maxY float64) bool {
				if max != "" && id >= max {
					return false
				}
				return sw.writeObject(id, minX, minY, maxX, maxY)
			})
		} else {
			sw.col.Scan(func(id string, minX, minY, maxX, maxY float64) bool {
				return sw.writeObject(id, minX, minY, maxX, maxY)
			})
		}
	}
	sw.writeFoot()
	if msg.OutputType == server.JSON {
		wr.WriteString(`,"elapsed":"` + time.Now().Sub(start).String() + "\"}")
		return wr.String(), nil
	}
	return sw.respValue()
}
