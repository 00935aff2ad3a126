// Package flagx holds helpers for sharing one command line between the
// configuration loader and the cobra command tree.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns a slice of command-line arguments that only contains
// the allowed flags (and their values) specified in allowedFlags.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      -config=conf.json
func FilterArgs(args []string, allowedFlags []string) []string {
	kept, _ := splitArgs(args, allowedFlags)
	return kept
}

// StripArgs is the complement of FilterArgs: it drops the listed flags (and
// their values) and returns everything else in the original order. The
// result is what the command tree gets to parse once the configuration
// loader has consumed its own flags.
func StripArgs(args []string, flags []string) []string {
	_, rest := splitArgs(args, flags)
	return rest
}

func splitArgs(args []string, names []string) (kept []string, rest []string) {
	known := make(map[string]struct{}, len(names))
	for _, f := range names {
		known[f] = struct{}{}
	}

	kept = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := known[name]; ok {
				kept = append(kept, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}

		if _, ok := known[arg]; !ok {
			rest = append(rest, arg)
			continue
		}

		kept = append(kept, arg)
		// a following token that does not look like a flag is the value
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			kept = append(kept, args[i+1])
			i++
		}
	}

	return kept, rest
}

// StringFlag extracts a single string value given under any of the listed
// names (for example "-c" and "-config"). The last occurrence wins. An empty
// string is returned when none of the names is present.
func StringFlag(args []string, names ...string) string {
	var value string

	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(discard{})
	for _, n := range names {
		fs.StringVar(&value, strings.TrimLeft(n, "-"), "", "")
	}
	_ = fs.Parse(FilterArgs(args, names))

	return value
}

// JsonConfigFlags returns the config file path given via -c or -config.
func JsonConfigFlags() string {
	return StringFlag(os.Args[1:], "-c", "-config")
}

// EnvFileFlags returns the dotenv file path given via -e or -env.
func EnvFileFlags() string {
	return StringFlag(os.Args[1:], "-e", "-env")
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
