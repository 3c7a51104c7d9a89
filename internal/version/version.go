// Package version carries build metadata, set via -ldflags at build time.
package version

var (
	AppName   = "Vassal"
	Version   = "dev"
	BuildDate = ""
)
