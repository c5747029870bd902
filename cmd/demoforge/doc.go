// Command demoforge is the CLI and server entry point. `demoforge serve`
// runs the pipeline daemon; the remaining commands talk to a running
// server over its HTTP API or operate on local configuration.
package main
