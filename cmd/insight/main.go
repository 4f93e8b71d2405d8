// Command insight is the entry point for the insight CLI.
package main

import (
	"github.com/impactdesk/insight-cli/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
