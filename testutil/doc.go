// Package testutil holds test doubles shared by edgeipc's package tests.
//
// MockNATSClient satisfies the Publisher and Subscriber interfaces in ipc
// without a server; handlers run synchronously inside Publish, so a test can
// publish and assert on the next line. SyncBuffer captures output written
// from another goroutine, such as a log channel or the write side of an
// ipc.Stream.
package testutil
