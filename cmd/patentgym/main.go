// Command patentgym is the full CLI: serve, corpus load, and evaluate.
package main

import "github.com/turtacn/PatentGym/internal/interfaces/cli"

func main() {
	cli.Execute()
}
