// cmd/mdname/main.go
package main

import (
	"os"

	"github.com/infodancer/folderstore/internal/cli"
)

func main() {
	code := cli.Run(os.Args[1:], cli.Config{
		AppName: "mdname",
		Version: "0.1.0-dev",
	})
	os.Exit(code)
}
