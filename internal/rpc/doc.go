// Package rpc exposes a board over gRPC as the vcboard.v1.Board service.
//
// Messages are plain Go structs encoded with protowire and carried by the
// "vcwire" codec, which both the server and the client force. The wire
// layout of each message is documented next to its type and is compatible
// with the equivalent proto3 definition.
package rpc
