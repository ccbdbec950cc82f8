package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/league-auth/internal/authctl"
)

func main() {
	os.Exit(authctl.Main(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
