// Package heimdall owns the process-wide instrumentation client.
//
// The client is created explicitly with Init (or InitWithTracerProvider in
// tests and custom pipelines) and torn down with Shutdown. Reset drops the
// handle so the next test starts clean. Until Init is called, Current
// returns nil and every instrumented call is a plain pass-through.
//
// The client also stores a session id and user id that apply outside any
// request, for single-tenant servers and batch jobs. Writers race freely;
// the last write wins.
package heimdall
