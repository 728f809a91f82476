// Command timeturner is the LTC clock-sync daemon and its operator CLI. The
// run subcommand hosts the daemon; the remaining subcommands talk to a
// running daemon over its HTTP API.
package main
