// Package logger builds configured slog.Logger instances for the SDK.
//
// The factory supports JSON and text output, static attributes, context
// extractors that inject request-scoped values at log time, and an in-memory
// ring buffer that retains the most recent records for diagnostics dumps
// (for example attaching recent auth activity to a bug report).
//
//	ring := logger.NewRingHandler(256)
//	log := logger.New(
//	    logger.WithDevelopment("flowgrid-sdk"),
//	    logger.WithRing(ring),
//	)
//	log.Info("hydration complete", "attempts", 2)
//	records := ring.Records() // most recent first
package logger
