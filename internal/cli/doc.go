// Package cli implements the interactive Kapture shell. It wires the local
// capture queue, the Notion client, the connectivity monitor and the sync
// engine together and exposes them as REPL commands.
package cli
