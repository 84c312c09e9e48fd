package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"drai-go/internal/model"
	"drai-go/internal/source"
	"drai-go/internal/store"
)

const report = `<p>Informe Semana 12 del 3 al 7 de marzo 2025</p>
<h3>Logístico</h3><ul><li>montaje</li><li>traslado</li></ul>
<p>Se da soporte y asistencia a 14 videoconferencias.</p>`

func weeksOf(rs []model.MetricsRecord) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.Week
	}
	return out
}

func TestRunMixedBatch(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	st := store.New(nil)
	st.Merge([]model.MetricsRecord{{Week: 2}})

	inputs := []source.Input{
		{Name: "Informe_Semana_12.html", Data: []byte(report)},
		{Name: "notas.html", Data: []byte("<p>sin cifras</p>")},
		{Name: "informe.pdf", Data: []byte("%PDF-1.4")},
		{Name: "perdido.docx", Err: errors.New("upload interrupted")},
		{Name: "resumen.txt", Data: []byte("Se da soporte y asistencia a 3 videoconferencias")},
	}

	res, err := Run(context.Background(), Options{Workers: 3, Log: zap.New(core)}, inputs, st)
	if err != nil {
		t.Fatal(err)
	}
	if res.BatchID == "" {
		t.Fatal("batch id not set")
	}
	if res.Accepted != 3 || len(res.Failures) != 2 {
		t.Fatalf("accepted %d failures %+v", res.Accepted, res.Failures)
	}
	if res.Failures[0].Name != "informe.pdf" || res.Failures[1].Name != "perdido.docx" {
		t.Fatalf("failure order %+v", res.Failures)
	}
	// unnumbered names count the week held and every record accepted ahead
	// of them: 1 held + 1 ahead + 1, then 1 + 2 + 1
	if got := weeksOf(res.Records); !reflect.DeepEqual(got, []int{12, 3, 4}) {
		t.Fatalf("record weeks %v", got)
	}
	if got := weeksOf(res.Stored); !reflect.DeepEqual(got, []int{2, 3, 4, 12}) {
		t.Fatalf("stored weeks %v", got)
	}
	if res.Records[1].ReportDate != "Semana 3" || res.Records[0].ReportDate != "3-7 marzo 2025" {
		t.Fatalf("date labels %q %q", res.Records[0].ReportDate, res.Records[1].ReportDate)
	}

	rec, ok := st.Week(12)
	if !ok || rec.Videoconferencias != 14 || rec.Area1.Value("logistico") != 2 {
		t.Fatalf("week 12 %+v", rec.Legacy)
	}
	if rec, _ := st.Week(2); rec.Area1.Name != "" {
		t.Fatal("existing week 2 was replaced")
	}

	if n := logs.FilterMessage("report failed").Len(); n != 2 {
		t.Fatalf("got %d failure logs", n)
	}
	if n := logs.FilterMessage("batch done").Len(); n != 1 {
		t.Fatalf("got %d batch logs", n)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := store.New(nil)
	_, err := Run(ctx, Options{}, []source.Input{{Name: "s1.html", Data: []byte("<p>x</p>")}}, st)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if st.Len() != 0 {
		t.Fatal("cancelled batch changed the store")
	}
}

func TestRunNumbersAfterEarlierRecords(t *testing.T) {
	st := store.New(nil)
	inputs := []source.Input{
		{Name: "s5.html", Data: []byte("<p>cinco</p>")},
		{Name: "informe.html", Data: []byte("<p>sin número</p>")},
	}
	res, err := Run(context.Background(), Options{}, inputs, st)
	if err != nil {
		t.Fatal(err)
	}
	if got := weeksOf(res.Records); !reflect.DeepEqual(got, []int{5, 2}) {
		t.Fatalf("weeks %v, want [5 2]", got)
	}
}

// gatedConverter holds the conversion of one file name until released.
type gatedConverter struct {
	name    string
	entered chan struct{}
	release chan struct{}
}

func (g gatedConverter) Convert(ctx context.Context, name string, data []byte) (string, error) {
	if name == g.name {
		close(g.entered)
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return string(data), nil
}

func TestOverlappingBatchesKeepEveryReport(t *testing.T) {
	st := store.New(nil)
	gate := gatedConverter{name: "lento.html", entered: make(chan struct{}), release: make(chan struct{})}
	opts := Options{Converter: gate}

	type outcome struct {
		res Result
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := Run(context.Background(), opts, []source.Input{{Name: "lento.html", Data: []byte("<p>uno</p>")}}, st)
		first <- outcome{res, err}
	}()
	<-gate.entered

	second, err := Run(context.Background(), opts, []source.Input{{Name: "rapido.html", Data: []byte("<p>dos</p>")}}, st)
	if err != nil {
		t.Fatal(err)
	}
	close(gate.release)
	out := <-first
	if out.err != nil {
		t.Fatal(out.err)
	}

	if second.Records[0].Week != 1 || out.res.Records[0].Week != 2 {
		t.Fatalf("weeks: rapido %d, lento %d", second.Records[0].Week, out.res.Records[0].Week)
	}
	if st.Len() != 2 {
		t.Fatalf("store holds %d records, want 2", st.Len())
	}
}
