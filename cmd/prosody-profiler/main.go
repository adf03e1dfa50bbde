// Command prosody-profiler analyzes speech recordings and recommends voice
// synthesis settings.
package main

import "github.com/RyanBlaney/prosody-profiler/cmd"

func main() {
	cmd.Execute()
}
