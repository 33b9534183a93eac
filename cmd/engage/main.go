// Package main is the single-binary entrypoint for the Smile-Share
// gamification engine.
package main

import "github.com/smile-share/engage/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
