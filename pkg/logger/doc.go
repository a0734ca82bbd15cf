// Package logger builds *slog.Logger instances with functional options,
// per-environment defaults and attributes injected from context.Context.
//
//	log := logger.New(
//	    logger.WithEnvironment(os.Getenv("APP_ENV"), "auth"),
//	    logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.InfoContext(ctx, "two-factor enabled",
//	    logger.Component("twofactor"),
//	    logger.UserID(userID),
//	)
//
// Attribute helpers (Error, UserID, Status, ...) keep key names consistent
// across packages; Error and Errors return an empty Attr for nil errors so
// they can be passed unconditionally.
package logger
