package main

import "landslide-monitor/cmd"

func main() {
	cmd.Execute()
}
