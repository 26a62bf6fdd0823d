// Package logging routes log records to the output channels the host opens
// for each severity.
//
// A Router owns one channel per routable severity (INFO, ERROR, DEBUG,
// WARNING, CRITICAL) and a minimum severity fixed at construction. Records
// below the minimum are dropped before any write; everything else is written
// as a single line of the form
//
//	<origin-file>:<origin-line>,<message>\n
//
// under a per-channel lock, so concurrent writers never interleave partial
// lines. Nothing is buffered between calls.
//
// StdioWriter adapts plain text output (fmt.Fprint, the standard log
// package) into records, and Handler does the same for log/slog:
//
//	writers, err := logging.OpenChannels(cfg.Severities())
//	router, err := logging.NewRouter(writers, threshold)
//	slog.SetDefault(slog.New(logging.NewHandler(router, nil)))
//	logging.RedirectStdLog(router, logging.SeverityInfo)
package logging
