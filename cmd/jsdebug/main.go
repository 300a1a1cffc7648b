// Command jsdebug is a command-line debugger for JavaScript VMs that speak the
// WebKit Inspector protocol.
package main

func main() {
	Execute()
}
