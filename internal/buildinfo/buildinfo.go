// Package buildinfo carries the version stamped in at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/taskdesk/internal/buildinfo.Version=v1.2.0"
package buildinfo

import (
	"fmt"
	"io"
	"runtime"
)

var (
	Version = "N/A"
	Date    = "N/A"
	Commit  = "N/A"
)

// PrintBuildData writes the build details to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", Date)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
	fmt.Fprintf(w, "Go version: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
