package main

import (
	"os"

	"github.com/dataforgoodfr/shiftdataportal-sub001/cli"
)

func main() {
	os.Exit(cli.Run())
}
