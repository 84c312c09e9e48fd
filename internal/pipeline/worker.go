package pipeline

import (
	"context"

	"go.uber.org/zap"

	"drai-go/internal/model"
	"drai-go/internal/parser"
	"drai-go/internal/source"
)

// process handles the whole life-cycle of one input.
func process(ctx context.Context, opts Options, in source.Input, week int) (model.MetricsRecord, error) {
	data, err := opts.Fetcher.Read(ctx, in)
	if err != nil {
		return model.MetricsRecord{}, err
	}
	markup, err := opts.Converter.Convert(ctx, in.Name, data)
	if err != nil {
		return model.MetricsRecord{}, err
	}

	doc := parser.NewDocument(markup)
	rec := opts.Aggregator.Build(week, doc)
	opts.Log.Debug("report extracted",
		zap.String("file", in.Name),
		zap.Int("week", week),
		zap.String("date", rec.ReportDate),
	)
	return rec, nil
}
