// Package buildinfo holds build-time metadata kept apart from user configuration.
package buildinfo

import (
	"fmt"
	"runtime"
)

// UnknownValue is reported for metadata that was not injected at build time.
const UnknownValue = "unknown"

// BuildInfo provides access to build-time metadata.
type BuildInfo interface {
	GetVersion() string
	GetBuildDate() string
}

// Context contains build-time metadata injected at startup via -ldflags.
type Context struct {
	version   string
	buildDate string
}

// NewContext returns build metadata for version and buildDate.
func NewContext(version, buildDate string) *Context {
	return &Context{version: version, buildDate: buildDate}
}

// GetVersion implements BuildInfo.GetVersion
func (c *Context) GetVersion() string {
	if c == nil || c.version == "" {
		return UnknownValue
	}
	return c.version
}

// GetBuildDate implements BuildInfo.GetBuildDate
func (c *Context) GetBuildDate() string {
	if c == nil || c.buildDate == "" {
		return UnknownValue
	}
	return c.buildDate
}

// String renders the line printed by the version command.
func (c *Context) String() string {
	return fmt.Sprintf("%s (built %s, %s %s/%s)",
		c.GetVersion(), c.GetBuildDate(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
