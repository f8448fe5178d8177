package lang

import "log/slog"

// LogValue renders the span compactly for structured logs.
func (s Span) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// LogValue decomposes the error into attributes so batch drivers can
// log failures without re-parsing rendered messages.
func (e *LexError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", "lexical error"),
		slog.String("reason", e.Reason),
		slog.Any("span", e.Span),
	)
}

// LogValue implements slog.LogValuer.
func (e *StructureError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 6)
	attrs = append(attrs,
		slog.String("error", "malformed directive structure"),
		slog.String("found", e.Found),
		slog.Any("span", e.Span),
	)

	if e.Expected != "" {
		attrs = append(attrs, slog.String("expected", e.Expected))
	}

	if e.Open != "" {
		attrs = append(attrs,
			slog.String("open", e.Open),
			slog.Any("opened", e.OpenSpan),
		)
	}

	return slog.GroupValue(attrs...)
}

// LogValue implements slog.LogValuer.
func (e *BalanceError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 6)
	attrs = append(attrs,
		slog.String("error", "unbalanced markup"),
		slog.String("reason", e.Reason),
		slog.Any("span", e.Span),
	)

	if e.Tag != "" {
		attrs = append(attrs, slog.String("tag", e.Tag))
	}

	if e.Branch != "" {
		attrs = append(attrs,
			slog.Group("expected",
				slog.String("branch", e.First),
				slog.String("delta", e.Expected.String()),
				slog.Int("depth", e.Expected.Depth()),
			),
			slog.Group("found",
				slog.String("branch", e.Branch),
				slog.String("delta", e.Found.String()),
				slog.Int("depth", e.Found.Depth()),
			),
		)
	}

	return slog.GroupValue(attrs...)
}

// LogValue implements slog.LogValuer.
func (e *ConfigError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 4)
	attrs = append(attrs,
		slog.String("error", "invalid configuration"),
		slog.String("option", e.Option),
	)

	if e.Suggest != "" {
		attrs = append(attrs, slog.String("suggest", e.Suggest))
	}

	if !e.Span.IsZero() {
		attrs = append(attrs, slog.Any("span", e.Span))
	}

	return slog.GroupValue(attrs...)
}
