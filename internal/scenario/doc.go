// Package scenario loads YAML step scripts and runs them against a board.
//
// A script names its processes and a list of steps. Each step does exactly
// one thing: post a message, sync two nodes, show one node's board, or run
// gossip rounds. Default returns the built-in three-process demonstration.
package scenario
