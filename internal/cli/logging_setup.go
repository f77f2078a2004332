package cli

import (
	"github.com/spf13/cobra"

	"github.com/droughtwatch/droughtwatch/internal/config"
	"github.com/droughtwatch/droughtwatch/internal/logging"
)

// loggingResult keeps the handles PersistentPostRunE must close.
type loggingResult = logging.Result

// setupLogging configures logging from the resolved config and the
// --debug flag, then seeds the command context with a trace ID and the
// root logger.
func setupLogging(cmd *cobra.Command, cfg *config.Config) logging.Result {
	loggingCfg := cfg.Logging

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
		loggingCfg.File = ""
	}

	result := logging.New(loggingCfg.ToLogging())
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Str("command", cmd.Name()).Str("trace_id", traceID).Msg("command started")

	return result
}

// cleanupLogging closes the log file handle, if one is open.
func cleanupLogging(result *loggingResult) error {
	if result == nil {
		return nil
	}
	return result.Close()
}
