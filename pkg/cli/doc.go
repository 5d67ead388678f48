// Package cli holds helpers shared by the gateway commands: typed command
// errors with exit codes, signal handling and route table output.
package cli
