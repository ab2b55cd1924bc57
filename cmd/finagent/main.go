// Command finagent runs financial research workflows from the terminal:
// start a run, approve or reject a suspended one, and inspect run status.
package main

func main() {
	Execute()
}
