package controller

import (
	"bytes"
	"time"

	"github.com/tidwall/resp"

	"github.com/boxmap/boxmap/controller/collection"
	"github.com/boxmap/boxmap/controller/glob"
	"github.com/boxmap/boxmap/controller/server"
)

func (c *Controller) cmdKeys(msg *server.Message) (res string, err error) {
	var start = time.Now()
	vs := msg.Values[1:]
	var pattern string
	var ok bool
	if vs, pattern, ok = tokenval(vs); !ok || pattern == "" {
		return "", errInvalidNumberOfArguments
	}
	if len(vs) != 0 {
		return "", errInvalidNumberOfArguments
	}

	var wr = &bytes.Buffer{}
	var once bool
	if msg.OutputType == server.JSON {
		wr.WriteString(`{"ok":true,"keys":[`)
	}
	var vals []resp.Value
	everything := pattern == "*"
	isGlob := glob.IsGlob(pattern)
	iterator := func(key string, col *collection.Collection) bool {
		var match bool
		if everything {
			match = true
		} else if !isGlob {
			match = key == pattern
		} else {
			match, _ = glob.Match(pattern, key)
		}
		if match {
			if once {
				if msg.OutputType == server.JSON {
					wr.WriteByte(',')
				}
			} else {
				once = true
			}
			switch msg.OutputType {
			case server.JSON:
				wr.WriteString(jsonString(key))
			case server.RESPOutput:
				vals = append(vals, resp.StringValue(key))
			}
		}
		return true
	}

	g := glob.Parse(pattern, false)
	if g.Limits[0] == "" && g.Limits[1] == "" {
		c.scanGreaterOrEqual("", iterator)
	} else {
		max := g.Limits[1]
		c.scanGreaterOrEqual(g.Limits[0], func(key string, col *collection.Collection) bool {
			if max != "" && key >= max {
				return false
			}
			return iterator(key, col)
		})
	}

	if msg.OutputType == server.JSON {
		wr.WriteString(`],"elapsed":"` + time.Now().Sub(start).String() + "\"}")
		return wr.String(), nil
	}
	data, err := resp.ArrayValue(vals).MarshalRESP()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
