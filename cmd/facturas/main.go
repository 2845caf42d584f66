package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andy/facturas/internal/app"
	"github.com/andy/facturas/internal/cli"
)

func main() {
	// Help and config commands must work without opening the database (which may prompt)
	if cli.NeedsApp(os.Args[1:]) {
		ctx := context.Background()
		a, err := app.New(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize app: %v\n", err)
			os.Exit(1)
		}
		defer a.Close()
		cli.SetApp(a)
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
