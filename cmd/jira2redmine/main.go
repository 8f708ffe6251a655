// Command jira2redmine runs the three-phase Jira-to-Redmine issue
// migration core: extract, transform, push.
package main

import (
	"fmt"
	"os"

	"github.com/jcatrysse/jira2redmine-issues/cmd/jira2redmine/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}
