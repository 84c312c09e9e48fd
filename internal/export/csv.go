package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"drai-go/internal/model"
)

// CSV writes one summary row per week under a fixed header.
func CSV(w io.Writer, records []model.MetricsRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return eris.Wrap(err, "write csv header")
	}
	for _, r := range records {
		row := summaryRow(r)
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		if err := cw.Write(cells); err != nil {
			return eris.Wrapf(err, "write csv week %d", r.Week)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "flush csv")
	}
	return nil
}
