// Package protocol drives a UCI engine over its line stream.
//
// The Driver writes command lines through a config.Process and blocks on the
// process output queue until a line matching a Matcher arrives or a deadline
// elapses. UCI has no request ids, so exactly one request may be in flight per
// process; callers serialize cycles and Drain stale output before each one.
//
// Example usage:
//
//	driver := protocol.NewDriver(log, process)
//
//	if err := driver.Send(protocol.CmdIsReady); err != nil {
//		return err
//	}
//
//	_, err := driver.WaitFor(ctx, protocol.Contains(protocol.TokenReadyOK), 10*time.Second)
package protocol
