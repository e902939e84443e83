package main

import (
	"fmt"

	"github.com/fwojciec/docchat/conversation"
)

// Run executes the graph command. No clients are built, so it needs no API
// key or index.
func (c *GraphCmd) Run(deps *Dependencies) error {
	machine, err := (&conversation.Agent{}).Compile()
	if err != nil {
		return fail(deps, err)
	}
	fmt.Fprint(deps.Stdout, machine.Mermaid())
	return nil
}
