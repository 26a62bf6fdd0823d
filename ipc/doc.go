// Package ipc moves encoded messages between a function process and its
// host.
//
// A Stream frames messages over any byte stream, typically the process's
// stdin and stdout:
//
//	+----------------------+---------------------------+
//	| length uint32 (LE)   | encoded message (length)  |
//	+----------------------+---------------------------+
//
// The body is whatever the configured message.Codec produces (the JSON
// envelope or the msgpack envelope). Frames larger than the configured limit
// (DefaultMaxFrameSize) are refused on both sides.
//
// NATSTransport publishes encoded messages on a subject and decodes what
// arrives on another; anything that fails to decode is logged and dropped.
//
// Relay connects the two. With a transport it forwards every frame from the
// stream to NATS and writes replies back. Without one it echoes frames:
//
//	stream := ipc.NewStream(os.Stdin, os.Stdout, codec)
//	relay := &ipc.Relay{Stream: stream, Transport: transport, Subject: "fn.hello"}
//	err := relay.Run(ctx)
package ipc
