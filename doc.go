// Package blocklog configures named rs/zerolog loggers with console and
// rotating-file sinks and renders every event as a multi-section,
// human-readable report instead of a single line.
//
// Key features
//   - Environment-driven default verbosity: "prod"/"production" selects
//     info, anything else selects debug, and an undeterminable environment
//     degrades to the quietest level rather than failing setup
//   - Block rendering: header, message, request/response, user/auth,
//     details, attached objects and exception trace sections, each emitted
//     only when the event carries the matching field
//   - Daily file rotation via lumberjack with a fixed retention of 14
//     backups under a <dir>/_logs/logs.log layout
//   - Best-effort formatting: a field that cannot be rendered degrades to
//     a placeholder, never a panic out of the sink
//   - Error history enrichment: events carrying an error include the full
//     cause chain (outermost -> root) and the operations chain when using
//     Station-Manager DetailedError; the exception block renders it
//
// Typical usage
//
//	if err := blocklog.Setup("Billing", "billing", nil); err != nil {
//		panic(err)
//	}
//
//	log := blocklog.GetLogger("billing")
//	log.Info().Str("user", "alice").Str("auth_info", "token-1").Msg("signed in")
//	log.Error().Err(err).Interface("request", blocklog.RequestInfo(req)).Msg("upstream call failed")
package blocklog
