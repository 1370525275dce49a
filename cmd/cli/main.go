package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/subdash/internal/cli"
)

func main() {

	cmd := cli.NewRootCmd(cli.OpenPostgres)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

}
