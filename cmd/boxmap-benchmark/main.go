package main

import (
	"fmt"
	"math/rand"
	"net"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tidwall/redbench"

	"github.com/boxmap/boxmap/core"
)

var (
	hostname = "127.0.0.1"
	port     = 9951
	clients  = 50
	requests = 100000
	quiet    = false
	pipeline = 1
	csv      = false
	json     = false
	tests    = "PING,ADD,GET,INTERSECTS,DEL"
)

var addr string

const benchArea = 10000.0

func showHelp() bool {
	gitsha := ""
	if core.GitSHA != "" && core.GitSHA != "0000000" {
		gitsha = " (git:" + core.GitSHA + ")"
	}
	fmt.Fprintf(os.Stdout, "boxmap-benchmark %s%s\n\n", core.Version, gitsha)
	fmt.Fprintf(os.Stdout, "Usage: boxmap-benchmark [-h <host>] [-p <port>] [-c <clients>] [-n <requests>]\n")
	fmt.Fprintf(os.Stdout, " -h <hostname>      Server hostname (default: %s)\n", hostname)
	fmt.Fprintf(os.Stdout, " -p <port>          Server port (default: %d)\n", port)
	fmt.Fprintf(os.Stdout, " -c <clients>       Number of parallel connections (default %d)\n", clients)
	fmt.Fprintf(os.Stdout, " -n <requests>      Total number or requests (default %d)\n", requests)
	fmt.Fprintf(os.Stdout, " -q                 Quiet. Just show query/sec values\n")
	fmt.Fprintf(os.Stdout, " -P <numreq>        Pipeline <numreq> requests. Default 1 (no pipeline).\n")
	fmt.Fprintf(os.Stdout, " -t <tests>         Only run the comma separated list of tests. The test\n")
	fmt.Fprintf(os.Stdout, "                    names are the same as the ones produced as output.\n")
	fmt.Fprintf(os.Stdout, " --csv              Output in CSV format.\n")
	fmt.Fprintf(os.Stdout, " --json             Request JSON responses (default is RESP output)\n")
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
	readIntArg := func(arg string) int {
		n, err := strconv.ParseUint(readArg(arg), 10, 64)
		if err != nil {
			panic("bad arg")
		}
		return int(n)
	}
	badArg := func(arg string) bool {
		fmt.Fprintf(os.Stderr, "Unrecognized option or bad number of args for: '%s'\n", arg)
		return false
	}

	for len(args) > 0 {
		arg := readArg("")
		if arg == "--help" || arg == "-?" {
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
			port = readIntArg(arg)
		case "-c":
			clients = readIntArg(arg)
			if clients <= 0 {
				clients = 1
			}
		case "-n":
			requests = readIntArg(arg)
			if requests <= 0 {
				requests = 0
			}
		case "-q":
			quiet = true
		case "-P":
			pipeline = readIntArg(arg)
			if pipeline <= 0 {
				pipeline = 1
			}
		case "-t":
			tests = readArg(arg)
		case "--csv":
			csv = true
		case "--json":
			json = true
		}
	}
	return true
}

func fillOpts() *redbench.Options {
	opts := *redbench.DefaultOptions
	opts.CSV = csv
	opts.Clients = clients
	opts.Pipeline = pipeline
	opts.Quiet = quiet
	opts.Requests = requests
	opts.Stderr = os.Stderr
	opts.Stdout = os.Stdout
	return &opts
}

func randBox() (minX, minY, maxX, maxY float64) {
	minX = rand.Float64() * (benchArea - 100)
	minY = rand.Float64() * (benchArea - 100)
	return minX, minY, minX + rand.Float64()*99 + 1, minY + rand.Float64()*99 + 1
}

func prepFn(conn net.Conn) bool {
	if json {
		conn.Write([]byte("output json\r\n"))
		resp := make([]byte, 100)
		conn.Read(resp)
	}
	return true
}

func prepBench(conn net.Conn) bool {
	conn.Write([]byte(fmt.Sprintf("build key:bench 0 0 %f %f 6\r\n", benchArea, benchArea)))
	resp := make([]byte, 100)
	conn.Read(resp)
	return prepFn(conn)
}

func f5(f float64) string {
	return strconv.FormatFloat(f, 'f', 5, 64)
}

func main() {
	rand.Seed(time.Now().UnixNano())
	if !parseArgs() {
		return
	}
	addr = fmt.Sprintf("%s:%d", hostname, port)
	for _, test := range strings.Split(tests, ",") {
		switch strings.ToUpper(strings.TrimSpace(test)) {
		case "PING":
			redbench.Bench("PING", addr, fillOpts(), prepFn,
				func(buf []byte) []byte {
					return redbench.AppendCommand(buf, "PING")
				},
			)
		case "ADD":
			var i int64
			redbench.Bench("ADD", addr, fillOpts(), prepBench,
				func(buf []byte) []byte {
					i := atomic.AddInt64(&i, 1)
					minX, minY, maxX, maxY := randBox()
					return redbench.AppendCommand(buf, "ADD", "key:bench", "id:"+strconv.FormatInt(i, 10),
						f5(minX), f5(minY), f5(maxX), f5(maxY))
				},
			)
		case "GET":
			var i int64
			redbench.Bench("GET", addr, fillOpts(), prepBench,
				func(buf []byte) []byte {
					i := atomic.AddInt64(&i, 1)
					return redbench.AppendCommand(buf, "GET", "key:bench", "id:"+strconv.FormatInt(i, 10))
				},
			)
		case "INTERSECTS":
			redbench.Bench("INTERSECTS (count)", addr, fillOpts(), prepBench,
				func(buf []byte) []byte {
					minX, minY, maxX, maxY := randBox()
					return redbench.AppendCommand(buf, "INTERSECTS", "key:bench", "COUNT",
						f5(minX), f5(minY), f5(maxX), f5(maxY))
				},
			)
			redbench.Bench("INTERSECTS (ids)", addr, fillOpts(), prepBench,
				func(buf []byte) []byte {
					minX, minY, maxX, maxY := randBox()
					return redbench.AppendCommand(buf, "INTERSECTS", "key:bench", "LIMIT", "100", "IDS",
						f5(minX), f5(minY), f5(maxX), f5(maxY))
				},
			)
		case "DEL":
			var i int64
			redbench.Bench("DEL", addr, fillOpts(), prepBench,
				func(buf []byte) []byte {
					i := atomic.AddInt64(&i, 1)
					return redbench.AppendCommand(buf, "DEL", "key:bench", "id:"+strconv.FormatInt(i, 10))
				},
			)
		}
	}
}
