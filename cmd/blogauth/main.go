package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-blog-auth/cmd/blogauth/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
