// Package fakeengine contains a scripted UCI engine used across tests.
//
// The engine can run in memory (Process, Launcher) for fast supervisor and
// coordinator tests, or as a real child process through the helper-process
// pattern: a test binary calls Main from TestMain and re-executes itself with
// the behavior encoded in the environment (Command). It is not intended for
// production usage.
package fakeengine
