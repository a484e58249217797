// Package cli implements the vcboard command line.
//
// demo and run execute scenarios against an in-process board. serve exposes
// a board over gRPC; post, sync, show and gossip are clients of that server.
package cli
