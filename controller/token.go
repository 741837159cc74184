package controller

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/resp"
)

const defaultSearchOutput = outputIDs

var errInvalidNumberOfArguments = errors.New("invalid number of arguments")
var errKeyNotFound = errors.New("key not found")
var errIDNotFound = errors.New("id not found")

func errInvalidArgument(arg string) error {
	return fmt.Errorf("invalid argument '%s'", arg)
}
func errDuplicateArgument(arg string) error {
	return fmt.Errorf("duplicate argument '%s'", arg)
}

func tokenval(vs []resp.Value) (nvs []resp.Value, token string, ok bool) {
	if len(vs) > 0 {
		token = vs[0].String()
		nvs = vs[1:]
		ok = true
	}
	return
}

func tokenlc(vs []resp.Value) (nvs []resp.Value, token string, ok bool) {
	nvs, token, ok = tokenval(vs)
	token = strings.ToLower(token)
	return
}

type searchScanBaseTokens struct {
	key    string
	output outputT
	glob   string
	limit  uint64
}

func parseSearchScanBaseTokens(cmd string, vs []resp.Value) (nvs []resp.Value, t searchScanBaseTokens, err error) {
	var ok bool
	if vs, t.key, ok = tokenval(vs); !ok || t.key == "" {
		err = errInvalidNumberOfArguments
		return
	}
	var slimit string
	for {
		var wtok string
		nvs, wtok, ok = tokenval(vs)
		if ok && len(wtok) > 0 {
			switch strings.ToLower(wtok) {
			case "match":
				vs = nvs
				if t.glob != "" {
					err = errDuplicateArgument(strings.ToUpper(wtok))
					return
				}
				if vs, t.glob, ok = tokenval(vs); !ok || t.glob == "" {
					err = errInvalidNumberOfArguments
					return
				}
				continue
			case "limit":
				vs = nvs
				if slimit != "" {
					err = errDuplicateArgument(strings.ToUpper(wtok))
					return
				}
				if vs, slimit, ok = tokenval(vs); !ok || slimit == "" {
					err = errInvalidNumberOfArguments
					return
				}
				continue
			}
		}
		break
	}

	t.output = defaultSearchOutput
	var which string
	if nvs, which, ok = tokenval(vs); ok && which != "" {
		updated := true
		switch strings.ToLower(which) {
		default:
			if cmd == "scan" {
				err = errInvalidArgument(which)
				return
			}
			updated = false
		case "count":
			t.output = outputCount
		case "bounds":
			t.output = outputBounds
		case "ids":
			t.output = outputIDs
		}
		if updated {
			vs = nvs
		}
	}

	// an unset limit stays zero; the scan writer applies the default
	if slimit != "" {
		if t.limit, err = strconv.ParseUint(slimit, 10, 64); err != nil || t.limit == 0 {
			err = errInvalidArgument(slimit)
			return
		}
	}
	nvs = vs
	return
}
