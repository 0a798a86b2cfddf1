// Package flagx helps several independent components share os.Args: each
// one filters out only the flags it owns before handing them to its own
// flag.FlagSet.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigEnv names the environment variable consulted when no -c/-config
// flag is given.
const ConfigEnv = "GOPHNOTES_CONFIG"

// FilterArgs keeps the flags listed in allowedFlags together with their
// values and drops everything else. Both "-f value" and "-f=value" forms are
// recognised; a following token that starts with "-" is never taken as a
// value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]bool, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = true
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if allowed[name] {
				filtered = append(filtered, arg)
			}
			continue
		}

		if !allowed[arg] {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			filtered = append(filtered, args[i])
		}
	}
	return filtered
}

// ConfigFileFlag returns the config file path given with -c or -config,
// falling back to $GOPHNOTES_CONFIG. The last flag occurrence wins.
func ConfigFileFlag() string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-c", "-config"}))

	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	return path
}
