package main

import (
	"os"

	"github.com/geowise/station-healthcheck/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
