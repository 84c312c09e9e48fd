package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"drai-go/internal/config"
	"drai-go/internal/convert"
	"drai-go/internal/extract"
	"drai-go/internal/hostman"
	"drai-go/internal/logging"
	"drai-go/internal/model"
	"drai-go/internal/pipeline"
	"drai-go/internal/source"
	"drai-go/internal/storage"
	"drai-go/internal/store"
)

// app is what every subcommand shares once flags are parsed.
type app struct {
	cfg       config.Config
	log       *zap.Logger
	converter *convert.Registry
	fetcher   *source.Fetcher
	agg       *extract.Aggregator
}

func setup(configPath, logLevel string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		return nil, err
	}

	table, err := extract.LoadTable(cfg.Extract.AreasFile)
	if err != nil {
		return nil, err
	}
	agg := extract.NewAggregator(table, log)
	agg.DefaultYear = cfg.Extract.DefaultYear

	hosts := hostman.New(nil, cfg.Fetch.UserAgent, cfg.Fetch.RequestsPerHost, cfg.Fetch.RobotsTimeout.Duration)
	return &app{
		cfg:       cfg,
		log:       log,
		converter: convert.NewRegistry(),
		fetcher:   source.NewFetcher(hosts, cfg.Batch.MaxBytes),
		agg:       agg,
	}, nil
}

func (a *app) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Workers:    a.cfg.Batch.Workers,
		Converter:  a.converter,
		Aggregator: a.agg,
		Fetcher:    a.fetcher,
		Log:        a.log,
	}
}

func (a *app) newStore() *store.Store {
	return store.New(store.PolicyByName(a.cfg.Batch.Dedup))
}

func (a *app) openArchive(ctx context.Context) (*storage.Archive, error) {
	c := a.cfg.Archive
	return storage.New(ctx, c.URI, c.Database, c.Collection, a.log)
}

// readRecords loads a JSON array of records, sorted and one per week.
func readRecords(path string, policy store.Policy) ([]model.MetricsRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read records %s", path)
	}
	var records []model.MetricsRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "decode records %s", path)
	}
	return store.Ingest(records, nil, policy), nil
}

func writeRecords(path string, records []model.MetricsRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode records")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write records %s", path)
	}
	return nil
}
