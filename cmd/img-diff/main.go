package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ironsheep/img-diff/internal/cli"
	"github.com/ironsheep/img-diff/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version":
			fmt.Printf("img-diff %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "serve":
			serve()
			return
		}
	}

	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}

// serve runs the MCP server on stdin/stdout.
func serve() {
	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if strings.EqualFold(os.Getenv(server.LogLevelEnv), "debug") {
		log.Printf("img-diff MCP server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	server.Version = Version
	srv := server.New()
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
