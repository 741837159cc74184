package core

import (
	"encoding/json"
	"strings"
)

const (
	clear  = "\x1b[0m"
	bright = "\x1b[1m"
	gray   = "\x1b[90m"
	yellow = "\x1b[33m"
)

// Command is the definition of one server command.
type Command struct {
	Name       string     `json:"-"`
	Summary    string     `json:"summary"`
	Complexity string     `json:"complexity"`
	Arguments  []Argument `json:"arguments"`
	Since      string     `json:"since"`
	Group      string     `json:"group"`
	DevOnly    bool       `json:"dev"`
}

func (c Command) String() string {
	var s = c.Name
	for _, arg := range c.Arguments {
		s += " " + arg.String()
	}
	return s
}

// TermOutput returns a colorized help blurb for terminals.
func (c Command) TermOutput(indent string) string {
	line1 := bright + strings.Replace(c.String(), " ", " "+clear+gray, 1) + clear
	line2 := yellow + "summary: " + clear + c.Summary
	line3 := yellow + "since: " + clear + c.Since
	return indent + line1 + "\n" + indent + line2 + "\n" + indent + line3 + "\n"
}

// Argument is one argument in a command definition.
type Argument struct {
	Command  string      `json:"command"`
	NameAny  interface{} `json:"name"`
	TypeAny  interface{} `json:"type"`
	Optional bool        `json:"optional"`
	Multiple bool        `json:"multiple"`
	Variadic bool        `json:"variadic"`
	Enum     []string    `json:"enum"`
}

func (a Argument) String() string {
	var s string
	if a.Command != "" {
		s += " " + a.Command
	}
	if len(a.Enum) > 0 {
		s += " " + strings.Join(a.Enum, "|")
	} else {
		names, _ := a.NameTypes()
		subs := ""
		for _, name := range names {
			subs += " " + name
		}
		subs = strings.TrimSpace(subs)
		s += " " + subs
		if a.Variadic {
			s += " [" + subs + " ...]"
		}
		if a.Multiple {
			s += " ..."
		}
	}
	s = strings.TrimSpace(s)
	if a.Optional {
		s = "[" + s + "]"
	}
	return s
}

func parseAnyStringArray(any interface{}) []string {
	if str, ok := any.(string); ok {
		return []string{str}
	} else if any, ok := any.([]interface{}); ok {
		arr := []string{}
		for _, any := range any {
			if str, ok := any.(string); ok {
				arr = append(arr, str)
			}
		}
		return arr
	}
	return []string{}
}

// NameTypes returns the argument names and their types, padded to the
// same length.
func (a Argument) NameTypes() (names, types []string) {
	names = parseAnyStringArray(a.NameAny)
	types = parseAnyStringArray(a.TypeAny)
	if len(types) > len(names) {
		types = types[:len(names)]
	} else {
		for len(types) < len(names) {
			types = append(types, "")
		}
	}
	return
}

// Commands is the table of all server commands, keyed by uppercase name.
var Commands = func() map[string]Command {
	var commands map[string]Command
	if err := json.Unmarshal([]byte(commandsJSON), &commands); err != nil {
		panic(err.Error())
	}
	for name, command := range commands {
		command.Name = strings.ToUpper(name)
		commands[name] = command
	}
	return commands
}()

var commandsJSON = `{
	"BUILD": {
		"summary": "Creates a key as a fixed-depth grid over an area",
		"complexity": "O(4^depth)",
		"arguments": [
			{"name": "key", "type": "string"},
			{"name": ["minx", "miny", "maxx", "maxy"], "type": ["double", "double", "double", "double"]},
			{"name": "depth", "type": "integer"}
		],
		"since": "0.1.0",
		"group": "keys"
	},
	"ADD": {
		"summary": "Files an object's bounding box into a key",
		"complexity": "O(L) where L is the number of overlapped cells",
		"arguments": [
			{"name": "key", "type": "string"},
			{"name": "id", "type": "string"},
			{"name": ["minx", "miny", "maxx", "maxy"], "type": ["double", "double", "double", "double"]}
		],
		"since": "0.1.0",
		"group": "keys"
	},
	"DEL": {
		"summary": "Deletes an id from a key",
		"complexity": "O(R) where R is the number of cell references held by the id",
		"arguments": [
			{"name": "key", "type": "string"},
			{"name": "id", "type": "string"}
		],
		"since": "0.1.0",
		"group": "keys"
	},
	"GET": {
		"summary": "Gets the stored bounding box of an id",
		"complexity": "O(log N) where N is the number of ids in the key",
		"arguments": [
			{"name": "key", "type": "string"},
			{"name": "id", "type": "string"}
		],
		"since": "0.1.0",
		"group": "keys"
	},
	"DROP": {
		"summary": "Removes a key and all of its objects",
		"complexity": "O(1)",
		"arguments": [
			{"name": "key", "type": "string"}
		],
		"since": "0.1.0",
		"group": "keys"
	},
	"BOUNDS": {
		"summary": "Shows the area, depth, and window of a key",
		"complexity": "O(1)",
		"arguments": [
			{"name": "key", "type": "string"}
		],
		"since": "0.1.0",
		"group": "keys"
	},
	"WINDOW": {
		"summary": "Composes a pan/zoom onto a key's coordinate window",
		"complexity": "O(1)",
		"arguments": [
			{"name": "key", "type": "string"},
			{"name": ["sx", "sy", "scale"], "type": ["double", "double", "double"]}
		],
		"since": "0.1.0",
		"group": "keys"
	},
	"RESETWINDOW": {
		"summary": "Discards a key's accumulated pan/zoom window",
		"complexity": "O(1)",
		"arguments": [
			{"name": "key", "type": "string"}
		],
		"since": "0.1.0",
		"group": "keys"
	},
	"KEYS": {
		"summary": "Finds all keys matching the given pattern",
		"complexity": "O(N) where N is the number of keys in the database",
		"arguments": [
			{"name": "pattern", "type": "pattern"}
		],
		"since": "0.1.0",
		"group": "keys"
	},
	"SCAN": {
		"summary": "Iterates the ids of a key in order",
		"complexity": "O(N) where N is the number of ids in the key",
		"arguments": [
			{"name": "key", "type": "string"},
			{"command": "MATCH", "name": "pattern", "type": "pattern", "optional": true},
			{"command": "LIMIT", "name": "count", "type": "integer", "optional": true},
			{"enum": ["IDS", "COUNT", "BOUNDS"], "optional": true}
		],
		"since": "0.1.0",
		"group": "search"
	},
	"INTERSECTS": {
		"summary": "Searches a key for ids filed into cells overlapping an area",
		"complexity": "O(C) where C is the number of cells visited",
		"arguments": [
			{"name": "key", "type": "string"},
			{"command": "MATCH", "name": "pattern", "type": "pattern", "optional": true},
			{"command": "LIMIT", "name": "count", "type": "integer", "optional": true},
			{"enum": ["IDS", "COUNT", "BOUNDS"], "optional": true},
			{"name": ["minx", "miny", "maxx", "maxy"], "type": ["double", "double", "double", "double"]}
		],
		"since": "0.1.0",
		"group": "search"
	},
	"STATS": {
		"summary": "Shows stats for one or more keys",
		"complexity": "O(N) where N is the number of keys being requested",
		"arguments": [
			{"name": "key", "type": "string", "multiple": true}
		],
		"since": "0.1.0",
		"group": "server"
	},
	"SERVER": {
		"summary": "Shows server stats and details",
		"complexity": "O(1)",
		"arguments": [],
		"since": "0.1.0",
		"group": "server"
	},
	"FLUSHDB": {
		"summary": "Removes all keys",
		"complexity": "O(1)",
		"arguments": [],
		"since": "0.1.0",
		"group": "server"
	},
	"READONLY": {
		"summary": "Turns read-only mode on or off",
		"complexity": "O(1)",
		"arguments": [
			{"enum": ["yes", "no"]}
		],
		"since": "0.1.0",
		"group": "server"
	},
	"CONFIG GET": {
		"summary": "Gets the value of a configuration parameter",
		"complexity": "O(1)",
		"arguments": [
			{"name": "parameter", "type": "string"}
		],
		"since": "0.1.0",
		"group": "server"
	},
	"CONFIG SET": {
		"summary": "Sets a configuration parameter",
		"complexity": "O(1)",
		"arguments": [
			{"name": "parameter", "type": "string"},
			{"name": "value", "type": "string", "optional": true}
		],
		"since": "0.1.0",
		"group": "server"
	},
	"CONFIG REWRITE": {
		"summary": "Rewrites the config file with the in-memory configuration",
		"complexity": "O(1)",
		"arguments": [],
		"since": "0.1.0",
		"group": "server"
	},
	"GC": {
		"summary": "Forces a garbage collection",
		"complexity": "O(1)",
		"arguments": [],
		"since": "0.1.0",
		"group": "server"
	},
	"PING": {
		"summary": "Pings the server",
		"complexity": "O(1)",
		"arguments": [],
		"since": "0.1.0",
		"group": "connection"
	},
	"AUTH": {
		"summary": "Authenticates the connection",
		"complexity": "O(1)",
		"arguments": [
			{"name": "password", "type": "string"}
		],
		"since": "0.1.0",
		"group": "connection"
	},
	"OUTPUT": {
		"summary": "Gets or sets the output format for the current connection",
		"complexity": "O(1)",
		"arguments": [
			{"enum": ["json", "resp"], "optional": true}
		],
		"since": "0.1.0",
		"group": "connection"
	},
	"QUIT": {
		"summary": "Closes the connection",
		"complexity": "O(1)",
		"arguments": [],
		"since": "0.1.0",
		"group": "connection"
	},
	"MASSINSERT": {
		"summary": "Randomly inserts objects into the specified number of keys",
		"complexity": "O(N) where N is the number of objects being created",
		"arguments": [
			{"name": "keys", "type": "integer"},
			{"name": "count", "type": "integer"}
		],
		"since": "0.1.0",
		"group": "dev",
		"dev": true
	}
}`
