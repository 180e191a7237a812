// Package async runs a function in a background goroutine and hands back a
// Future for optional observation of the result.
//
// The invitation services use it for fire-and-forget notification dispatch:
// the transition commits and returns without awaiting the email send, while a
// watcher goroutine awaits the future to log failures.
package async
