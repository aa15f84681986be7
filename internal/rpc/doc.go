// Package rpc defines the messages and gRPC services exchanged between skyshade
// coordinators and workers. Messages are plain Go structs, framed on the wire by
// the gob codec registered in this package (content-subtype "gob").
package rpc
