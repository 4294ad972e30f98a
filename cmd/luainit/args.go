package main

import (
	"strings"

	"github.com/dshills/luainit/internal/script"
)

// locateChunk picks the user script out of the positional arguments:
// the first entry ending in ".lua" is treated as a script path;
// otherwise the first argument is an inline chunk. The returned index
// is the script's position, used to anchor the arg table at 0.
func locateChunk(args []string) (script.Chunk, int) {
	for i, a := range args {
		if strings.HasSuffix(a, ".lua") {
			return script.Chunk{Path: a}, i
		}
	}
	return script.Chunk{Code: args[0]}, 0
}

// scriptArgv rebuilds the argv exposed through the script's arg table:
// the executable name first, then the positional arguments. Negative
// indices therefore reach back past any entries preceding the script
// to the program name, the standalone interpreter's convention.
func scriptArgv(exe string, args []string) []string {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, exe)
	return append(argv, args...)
}
