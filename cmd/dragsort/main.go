// Command dragsort serves and inspects drag-and-drop boards.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dragsort/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌┬┐┬─┐┌─┐┌─┐┌─┐┌─┐┬─┐┌┬┐
   ││├┬┘├─┤│ ┬└─┐│ │├┬┘ │
  ─┴┘┴└─┴ ┴└─┘└─┘└─┘┴└─ ┴
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "dragsort",
		Short: "Server-side drag and drop for HTML boards",
		Long: `dragsort keeps a live copy of an HTML board on the server and lets
clients drag its elements between container regions over WebSocket.

  • Pointer events are replayed against a server-side document
  • Drops are resolved by geometry, like a browser would
  • Every finished drag is broadcast as a signal plus a snapshot`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to dragsort.json or its directory")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		initCmd(),
		serveCmd(opts),
		renderCmd(opts),
		simulateCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the dragsort ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
