package main

import (
	"os"

	"github.com/tphakala/graphing-app/cmd"
	"github.com/tphakala/graphing-app/internal/buildinfo"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	build := buildinfo.NewContext(version, buildDate)
	if err := cmd.RootCommand(build).Execute(); err != nil {
		os.Exit(1)
	}
}
