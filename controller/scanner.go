package controller

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/tidwall/resp"

	"github.com/boxmap/boxmap/controller/collection"
	"github.com/boxmap/boxmap/controller/glob"
	"github.com/boxmap/boxmap/controller/server"
)

const limitItems = 100
const capLimit = 100000

type outputT int

const (
	outputUnknown outputT = iota
	outputIDs
	outputCount
	outputBounds
)

type scanWriter struct {
	wr             *bytes.Buffer
	msg            *server.Message
	col            *collection.Collection
	output         outputT
	numberItems    uint64
	limit          uint64
	once           bool
	count          uint64
	globs          *glob.Glob
	globEverything bool
	values         []resp.Value
}

func (c *Controller) newScanWriter(
	wr *bytes.Buffer, msg *server.Message, key string, output outputT, globPattern string, limit uint64,
) (*scanWriter, error) {
	if limit == 0 {
		limit = limitItems
	} else if limit > capLimit {
		limit = capLimit
	}
	switch output {
	default:
		return nil, errors.New("invalid output type")
	case outputIDs, outputCount, outputBounds:
	}
	sw := &scanWriter{
		wr:     wr,
		msg:    msg,
		output: output,
		limit:  limit,
	}
	if globPattern == "*" || globPattern == "" {
		sw.globEverything = true
	} else {
		sw.globs = glob.Parse(globPattern, false)
	}
	sw.col = c.getCol(key)
	return sw, nil
}

func (sw *scanWriter) writeHead() {
	if sw.msg.OutputType != server.JSON {
		return
	}
	switch sw.output {
	case outputIDs:
		sw.wr.WriteString(`,"ids":[`)
	case outputBounds:
		sw.wr.WriteString(`,"bounds":[`)
	case outputCount:
	}
}

func (sw *scanWriter) writeFoot() {
	if sw.msg.OutputType != server.JSON {
		return
	}
	switch sw.output {
	case outputCount:
	default:
		sw.wr.WriteByte(']')
	}
	sw.wr.WriteString(`,"count":` + strconv.FormatUint(sw.count, 10))
}

// respValue marshals the accumulated results for a RESP connection.
func (sw *scanWriter) respValue() (string, error) {
	var oval resp.Value
	if sw.output == outputCount {
		oval = resp.IntegerValue(int(sw.count))
	} else {
		oval = resp.ArrayValue(sw.values)
	}
	data, err := oval.MarshalRESP()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (sw *scanWriter) writeObject(id string, minX, minY, maxX, maxY float64) bool {
	keepGoing := true
	if !sw.globEverything {
		if !sw.globs.IsGlob {
			if sw.globs.Pattern != id {
				return true
			}
			keepGoing = false // return current object and stop iterating
		} else {
			ok, _ := glob.Match(sw.globs.Pattern, id)
			if !ok {
				return true
			}
		}
	}
	sw.count++
	if sw.output == outputCount {
		return keepGoing
	}
	if sw.msg.OutputType == server.JSON {
		if sw.once {
			sw.wr.WriteByte(',')
		} else {
			sw.once = true
		}
		switch sw.output {
		case outputIDs:
			sw.wr.WriteString(jsonString(id))
		case outputBounds:
			sw.wr.WriteString(`{"id":` + jsonString(id))
			sw.wr.WriteString(`,"bounds":[` +
				jsonFloat(minX) + "," + jsonFloat(minY) + "," +
				jsonFloat(maxX) + "," + jsonFloat(maxY) + `]}`)
		}
	} else {
		switch sw.output {
		case outputIDs:
			sw.values = append(sw.values, resp.StringValue(id))
		case outputBounds:
			sw.values = append(sw.values, resp.ArrayValue([]resp.Value{
				resp.StringValue(id),
				resp.ArrayValue([]resp.Value{
					resp.FloatValue(minX),
					resp.FloatValue(minY),
					resp.FloatValue(maxX),
					resp.FloatValue(maxY),
				}),
			}))
		}
	}
	sw.numberItems++
	if sw.numberItems == sw.limit {
		return false
	}
	return keepGoing
}
