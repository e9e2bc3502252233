// toon - TOON codec CLI tool
//
// Usage:
//
//	toon from-json [file]   Convert JSON to TOON
//	toon to-json [file]     Convert TOON to JSON
//	toon fmt [file]         Re-encode TOON in canonical form
//	toon version            Print version info
//
// If no file is given, reads from stdin.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/toon-format/toon-go/toon"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	opts := toon.DefaultEncodeOptions()
	fileArg := ""
	for _, arg := range os.Args[2:] {
		switch {
		case strings.HasPrefix(arg, "--indent="):
			if n, err := parseIntArg(arg, "--indent="); err == nil && n > 0 {
				opts.Indent = strings.Repeat(" ", n)
			}
		case strings.HasPrefix(arg, "--inline-limit="):
			if n, err := parseIntArg(arg, "--inline-limit="); err == nil && n > 0 {
				opts.InlineLimit = n
			}
		default:
			if !strings.HasPrefix(arg, "-") && arg != "-" {
				fileArg = arg
			}
		}
	}

	var input io.Reader = os.Stdin
	if fileArg != "" {
		f, err := os.Open(fileArg)
		if err != nil {
			fatal("open file: %v", err)
		}
		defer f.Close()
		input = f
	}

	switch cmd {
	case "from-json":
		cmdFromJSON(input, opts)
	case "to-json":
		cmdToJSON(input)
	case "fmt":
		cmdFmt(input, opts)
	case "version", "-v", "--version":
		fmt.Printf("toon %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `toon - TOON codec CLI tool

Usage:
  toon from-json [options] [file]   Convert JSON to TOON
  toon to-json [file]               Convert TOON to JSON
  toon fmt [options] [file]         Re-encode TOON in canonical form
  toon version                      Print version info

Options:
  --indent=N          Indentation width in spaces (default: 2)
  --inline-limit=N    Max width of an inline array before bullets (default: 120)

If no file is given, reads from stdin.

Examples:
  echo '{"users":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}' | toon from-json
  # Output:
  # users[2]{id,name}:
  #   1,a
  #   2,b

  cat data.json | toon from-json > data.toon
  toon to-json data.toon > data.json
`)
}

// cmdFromJSON: JSON -> TOON
func cmdFromJSON(r io.Reader, opts toon.EncodeOptions) {
	data, err := io.ReadAll(r)
	if err != nil {
		fatal("read input: %v", err)
	}
	v, err := toon.FromJSON(data)
	if err != nil {
		fatal("parse JSON: %v", err)
	}
	out, err := toon.EncodeWithOptions(v, opts)
	if err != nil {
		fatal("encode: %v", err)
	}
	fmt.Print(out)
}

// cmdToJSON: TOON -> pretty-printed JSON
func cmdToJSON(r io.Reader) {
	v, err := toon.Decode(r)
	if err != nil {
		fatal("parse input: %v", err)
	}
	data, err := v.ToJSON()
	if err != nil {
		fatal("convert to JSON: %v", err)
	}
	var pretty interface{}
	if err := json.Unmarshal(data, &pretty); err != nil {
		fatal("format JSON: %v", err)
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
}

// cmdFmt: TOON -> canonical TOON
func cmdFmt(r io.Reader, opts toon.EncodeOptions) {
	v, err := toon.Decode(r)
	if err != nil {
		fatal("parse input: %v", err)
	}
	out, err := toon.EncodeWithOptions(v, opts)
	if err != nil {
		fatal("encode: %v", err)
	}
	fmt.Print(out)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "toon: "+format+"\n", args...)
	os.Exit(1)
}

// parseIntArg extracts an integer from a flag like "--indent=4"
func parseIntArg(arg, prefix string) (int, error) {
	return strconv.Atoi(strings.TrimPrefix(arg, prefix))
}
