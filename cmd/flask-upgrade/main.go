package main

import "github.com/concolato/flask-upgrade/internal/cli"

func main() {
	cli.Execute()
}
