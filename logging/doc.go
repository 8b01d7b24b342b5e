/*
Package logging carries the diagnostic trace lines fetchmock emits when rules
are registered and requests are dispatched.

Client is a small leveled interface (Info, Warn, Error, Debug, Trace). New
sends lines to the Tarmac host's logging capability over waPC, NewZap wraps a
zap logger, NewConsole builds a zap console logger from a level name, and Nop
discards everything. Trace lines are an observability aid only; nothing in
fetchmock depends on them being written.
*/
package logging
