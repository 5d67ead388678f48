// Package logging builds the gateway's log/slog logger.
//
// # Usage
//
//	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	ctx = logging.WithTraceID(ctx, traceID)
//	slog.InfoContext(ctx, "request admitted") // carries trace_id
//
// Records logged with a context pick up the trace ID, authenticated user and
// backend service stored in it through ContextHandler, so pipeline code never
// threads these fields by hand.
//
// # Redaction
//
// Attributes named like credentials (authorization, api_key, token, secret,
// password) are replaced with "***", and bearer tokens or JWTs embedded in
// string values are masked.
package logging
