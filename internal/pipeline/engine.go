// Package pipeline runs one upload batch: every input is read, converted
// and aggregated in parallel, then the session store is updated once.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"drai-go/internal/extract"
	"drai-go/internal/metrics"
	"drai-go/internal/model"
	"drai-go/internal/source"
	"drai-go/internal/store"
)

// Failure is an input that produced no record.
type Failure struct {
	Name string `json:"name"`
	Err  string `json:"error"`
}

// Result summarises a batch. Records are the batch's own records in input
// order; Stored is the store content after the merge.
type Result struct {
	BatchID  string                `json:"batchId"`
	Accepted int                   `json:"accepted"`
	Failures []Failure             `json:"failures"`
	Records  []model.MetricsRecord `json:"records"`
	Stored   []model.MetricsRecord `json:"-"`
}

// -----------------------------------------------------------------------------
// Public entry-point
// -----------------------------------------------------------------------------

// Run processes inputs and merges the successful records into st. A failed
// input never stops the others; Run itself only fails when ctx ends.
func Run(ctx context.Context, opts Options, inputs []source.Input, st *store.Store) (Result, error) {
	opts.prepare()
	res := Result{BatchID: uuid.NewString(), Failures: []Failure{}}
	log := opts.Log.With(zap.String("batch", res.BatchID))
	start := time.Now()

	// ----- fan-out: one slot per input keeps input order -----------------
	records := make([]*model.MetricsRecord, len(inputs))
	errs := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range inputs {
		g.Go(func() error {
			week := extract.WeekFromFilename(inputs[i].Name, 0)
			rec, err := process(gctx, opts, inputs[i], week)
			if err != nil {
				errs[i] = err
				return nil
			}
			records[i] = &rec
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return res, err
	}

	// ----- collect -------------------------------------------------------
	for i, in := range inputs {
		if errs[i] != nil {
			log.Error("report failed", zap.String("file", in.Name), zap.Error(errs[i]))
			metrics.ConversionFailures.Inc()
			res.Failures = append(res.Failures, Failure{Name: in.Name, Err: errs[i].Error()})
			continue
		}
		res.Records = append(res.Records, *records[i])
		metrics.ReportsProcessed.Inc()
	}
	res.Accepted = len(res.Records)
	// unnumbered reports get their week here, under the store lock
	res.Stored = st.MergeNumbered(res.Records, labelWeek)

	log.Info("batch done",
		zap.Int("inputs", len(inputs)),
		zap.Int("accepted", res.Accepted),
		zap.Int("failed", len(res.Failures)),
		zap.Int("stored_weeks", len(res.Stored)),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

// labelWeek fills the date label of a report numbered at merge time.
func labelWeek(r *model.MetricsRecord) {
	if r.ReportDate == "" {
		r.ReportDate = extract.WeekLabel(r.Week)
	}
}
