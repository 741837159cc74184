package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/tidwall/gjson"

	"github.com/boxmap/boxmap/client"
	"github.com/boxmap/boxmap/core"
)

func userHomeDir() string {
	if runtime.GOOS == "windows" {
		home := os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		if home == "" {
			home = os.Getenv("USERPROFILE")
		}
		return home
	}
	return os.Getenv("HOME")
}

var (
	historyFile = filepath.Join(userHomeDir(), ".boxmap_history")
)

var (
	hostname   = "127.0.0.1"
	port       = 9951
	oneCommand string
)

func showHelp() bool {
	fmt.Fprintf(os.Stdout, "boxmap-cli %s (git:%s)\n\n", core.Version, core.GitSHA)
	fmt.Fprintf(os.Stdout, "Usage: boxmap-cli [OPTIONS] [cmd [arg [arg ...]]]\n")
	fmt.Fprintf(os.Stdout, " -h <hostname>      Server hostname (default: %s).\n", hostname)
	fmt.Fprintf(os.Stdout, " -p <port>          Server port (default: %d).\n", port)
	fmt.Fprintf(os.Stdout, "\n")
	return false
}

func parseArgs() bool {
	defer func() {
		if v := recover(); v != nil {
			if v, ok := v.(string); ok && v == "bad arg" {
				showHelp()
			}
		}
	}()

	args := os.Args[1:]
	readArg := func(arg string) string {
		if len(args) == 0 {
			panic("bad arg")
		}
		var narg = args[0]
		args = args[1:]
		return narg
	}
	badArg := func(arg string) bool {
		fmt.Fprintf(os.Stderr, "Unrecognized option or bad number of args for: '%s'\n", arg)
		return false
	}
	for len(args) > 0 {
		arg := readArg("")
		if arg == "--help" {
			return showHelp()
		}
		if !strings.HasPrefix(arg, "-") {
			args = append([]string{arg}, args...)
			break
		}
		switch arg {
		default:
			return badArg(arg)
		case "-h":
			hostname = readArg(arg)
		case "-p":
			n, err := strconv.ParseUint(readArg(arg), 10, 16)
			if err != nil {
				return badArg(arg)
			}
			port = int(n)
		}
	}
	oneCommand = strings.Join(args, " ")
	return true
}

func refusedErrorString(addr string) string {
	return fmt.Sprintf("Could not connect to Boxmap at %s: Connection refused", addr)
}

// splitArgs breaks a command line into arguments, honoring quotes.
func splitArgs(line string) ([]string, error) {
	var args []string
	for i := 0; i < len(line); i++ {
		switch c := line[i]; c {
		case ' ', '\t':
			continue
		case '"', '\'':
			quote := c
			i++
			var arg []byte
			for ; i < len(line); i++ {
				c := line[i]
				if c == '\\' && i+1 < len(line) {
					i++
					arg = append(arg, line[i])
					continue
				}
				if c == quote {
					break
				}
				arg = append(arg, c)
			}
			if i >= len(line) {
				return nil, errors.New("unbalanced quotes")
			}
			args = append(args, string(arg))
		default:
			start := i
			for ; i < len(line); i++ {
				if line[i] == ' ' || line[i] == '\t' {
					break
				}
			}
			args = append(args, line[start:i])
		}
	}
	return args, nil
}

func doCommand(conn *client.Conn, command string) (string, error) {
	args, err := splitArgs(command)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return "", nil
	}
	iargs := make([]interface{}, len(args)-1)
	for i := 1; i < len(args); i++ {
		iargs[i-1] = args[i]
	}
	v, err := conn.Do(args[0], iargs...)
	if err != nil {
		return "", err
	}
	if v.Error() != nil {
		return "", v.Error()
	}
	return v.String(), nil
}

var groupsM = make(map[string][]string)

func main() {
	if !parseArgs() {
		return
	}

	addr := fmt.Sprintf("%s:%d", hostname, port)
	conn, err := client.Dial(addr)
	if err != nil {
		if _, ok := err.(net.Error); ok {
			fmt.Fprintln(os.Stderr, refusedErrorString(addr))
		} else {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		return
	}
	defer conn.Close()
	if _, err := doCommand(conn, "output json"); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return
	}

	line := liner.NewLiner()
	defer line.Close()

	var commands []string
	for name, command := range core.Commands {
		commands = append(commands, name)
		groupsM[command.Group] = append(groupsM[command.Group], name)
	}
	sort.Strings(commands)
	var groups []string
	for group, arr := range groupsM {
		groups = append(groups, "@"+group)
		sort.Strings(arr)
		groupsM[group] = arr
	}
	sort.Strings(groups)

	line.SetMultiLineMode(false)
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(line string) (c []string) {
		if strings.HasPrefix(strings.ToLower(line), "help ") {
			var nitems []string
			nline := strings.TrimSpace(line[5:])
			if nline == "" || nline[0] == '@' {
				for _, n := range groups {
					if strings.HasPrefix(strings.ToLower(n), strings.ToLower(nline)) {
						nitems = append(nitems, line[:len(line)-len(nline)]+strings.ToLower(n))
					}
				}
			} else {
				for _, n := range commands {
					if strings.HasPrefix(strings.ToLower(n), strings.ToLower(nline)) {
						nitems = append(nitems, line[:len(line)-len(nline)]+strings.ToUpper(n))
					}
				}
			}
			for _, n := range nitems {
				if strings.HasPrefix(strings.ToLower(n), strings.ToLower(line)) {
					c = append(c, n)
				}
			}
		} else {
			for _, n := range commands {
				if strings.HasPrefix(strings.ToLower(n), strings.ToLower(line)) {
					c = append(c, n)
				}
			}
		}
		return
	})
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
		} else {
			line.WriteHistory(f)
			f.Close()
		}
	}()
	for {
		var command string
		var err error
		if oneCommand == "" {
			command, err = line.Prompt(addr + "> ")
		} else {
			command = oneCommand
		}
		if err == nil {
			nohist := strings.HasPrefix(command, " ")
			command = strings.TrimSpace(command)
			if command == "" {
				if _, err := doCommand(conn, "ping"); err != nil {
					if err != io.EOF {
						fmt.Fprintln(os.Stderr, err.Error())
					} else {
						fmt.Fprintln(os.Stderr, refusedErrorString(addr))
					}
					return
				}
			} else {
				if !nohist {
					line.AppendHistory(command)
				}
				lower := strings.ToLower(command)
				if lower == "exit" || lower == "quit" {
					return
				}
				if lower == "help" || strings.HasPrefix(lower, "help ") {
					if err := help(strings.TrimSpace(command[4:])); err != nil {
						return
					}
					continue
				}
				msg, err := doCommand(conn, command)
				if err != nil {
					if err == io.EOF {
						fmt.Fprintln(os.Stderr, refusedErrorString(addr))
						return
					}
					fmt.Fprintln(os.Stderr, "(error) "+err.Error())
					if oneCommand != "" {
						return
					}
					continue
				}
				if oneCommand == "" && !gjson.Get(msg, "ok").Bool() {
					errmsg := gjson.Get(msg, "err").String()
					fmt.Fprintln(os.Stderr, "(error) "+errmsg)
				} else {
					fmt.Fprintln(os.Stdout, msg)
				}
			}
		} else if err == liner.ErrPromptAborted {
			return
		} else {
			fmt.Fprintf(os.Stderr, "Error reading line: %s", err.Error())
		}
		if oneCommand != "" {
			return
		}
	}
}

func help(arg string) error {
	if arg == "" {
		fmt.Fprintf(os.Stderr, "boxmap-cli %s (git:%s)\n", core.Version, core.GitSHA)
		fmt.Fprintf(os.Stderr, `Type: "help @<group>" to get a list of commands in <group>`+"\n")
		fmt.Fprintf(os.Stderr, `      "help <command>" for help on <command>`+"\n")
		fmt.Fprintf(os.Stderr, `      "help <tab>" to get a list of possible help topics`+"\n")
		fmt.Fprintf(os.Stderr, `      "quit" to exit`+"\n")
		return nil
	}
	if strings.HasPrefix(arg, "@") {
		for _, command := range groupsM[arg[1:]] {
			fmt.Fprintf(os.Stderr, "%s\n", core.Commands[command].TermOutput("  "))
		}
	} else {
		if command, ok := core.Commands[strings.ToUpper(arg)]; ok {
			fmt.Fprintf(os.Stderr, "%s\n", command.TermOutput("  "))
		}
	}
	return nil
}
