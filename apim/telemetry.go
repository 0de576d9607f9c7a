// Copyright (c) Microsoft. All rights reserved.

package apim

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// LoggingMiddleware returns a [ChatMiddleware] that logs chat requests using slog.
// Message content and credentials are never logged.
func LoggingMiddleware(logger *slog.Logger) ChatMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ChatHandler) ChatHandler {
		return func(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error) {
			start := time.Now()
			logger.InfoContext(ctx, "chat request started",
				"message_count", len(messages),
				"model", opts.ModelOr(""),
			)

			resp, err := next(ctx, messages, opts)

			duration := time.Since(start)
			if err != nil {
				attrs := []any{"duration", duration, "error", err}
				var se *StatusError
				if errors.As(err, &se) {
					attrs = append(attrs, "status", se.StatusCode)
				}
				logger.ErrorContext(ctx, "chat request failed", attrs...)
				return nil, err
			}

			logger.InfoContext(ctx, "chat request completed",
				"duration", duration,
				"model", resp.Model,
				"choices", len(resp.Choices),
				"input_tokens", resp.Usage.InputTokens,
				"output_tokens", resp.Usage.OutputTokens,
			)
			return resp, nil
		}
	}
}
