package storage

import (
	"context"
	"testing"

	"drai-go/internal/model"
)

func TestDocument(t *testing.T) {
	var r model.MetricsRecord
	r.Week = 12
	r.ReportDate = "3-7 marzo 2025"
	r.Area1.Name = "Apoyo Logístico y Videoconferencia"
	r.Area1.Subactivities.Set("logistico", model.Numeric("Logístico", 5))
	r.Videoconferencias = 60

	doc, err := Document(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc) < 3 || doc[0].Key != "semana" || doc[1].Key != "fecha" || doc[2].Key != "area1" {
		t.Fatalf("field order %v", doc)
	}
	m := doc.Map()
	if m["semana"] != int32(12) || m["videoconferencias"] != int32(60) {
		t.Fatalf("values semana=%v videoconferencias=%v", m["semana"], m["videoconferencias"])
	}
}

func TestNoopArchive(t *testing.T) {
	a, err := New(context.Background(), "", "drai", "weekly_reports", nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.Enabled() {
		t.Fatal("empty uri should give a disabled archive")
	}
	n, err := a.Publish(context.Background(), []model.MetricsRecord{{Week: 1}})
	if err != nil || n != 0 {
		t.Fatalf("publish %d %v", n, err)
	}
	a.Close(context.Background())
}
