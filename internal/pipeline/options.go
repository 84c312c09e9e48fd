package pipeline

import (
	"go.uber.org/zap"

	"drai-go/internal/convert"
	"drai-go/internal/extract"
	"drai-go/internal/source"
)

type Options struct {
	Workers    int
	Converter  convert.Converter
	Aggregator *extract.Aggregator
	Fetcher    *source.Fetcher
	Log        *zap.Logger
}

// prepare fills unset collaborators with their defaults.
func (o *Options) prepare() {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Converter == nil {
		o.Converter = convert.NewRegistry()
	}
	if o.Aggregator == nil {
		o.Aggregator = extract.NewAggregator(nil, o.Log)
	}
	if o.Fetcher == nil {
		o.Fetcher = source.NewFetcher(nil, 0)
	}
}
