// Package logging centralizes slog construction for marquee.
//
// It provides the logger factory used by the CLI, typed attribute helpers so
// call sites never pass bare key/value pairs, and two handlers: a console
// handler meant for interactive runs (colorized on a TTY) and a JSON handler
// for log files and scripted use.
package logging
