package exposure

import (
	"testing"

	"github.com/talgya/caravan-needs/internal/agents"
	"github.com/talgya/caravan-needs/internal/water"
)

func TestLogReportAndDrain(t *testing.T) {
	l := NewLog()
	m := &agents.Member{ID: 4, Name: "Erik Voss", CaravanID: 2}

	l.SetTick(100)
	l.Report(m, water.Treated)
	l.SetTick(160)
	l.Report(m, water.Contaminated)

	if l.Pending() != 2 {
		t.Fatalf("pending = %d", l.Pending())
	}
	recs := l.Drain()
	if len(recs) != 2 || l.Pending() != 0 {
		t.Fatalf("drain returned %d, pending %d", len(recs), l.Pending())
	}
	if recs[0].Tick != 100 || recs[1].Tick != 160 || recs[1].Tier != water.Contaminated {
		t.Fatalf("unexpected records %+v", recs)
	}
	if recs[0].ID == recs[1].ID {
		t.Fatalf("record ids must be unique")
	}
	if recs[0].CaravanID != 2 || recs[0].MemberID != 4 || recs[0].Member != "Erik Voss" {
		t.Fatalf("member not recorded: %+v", recs[0])
	}

	totals := l.Totals()
	if totals[water.Treated] != 1 || totals[water.Untreated] != 0 || totals[water.Contaminated] != 1 {
		t.Fatalf("totals = %v", totals)
	}
}

func TestUnsavedAndAck(t *testing.T) {
	l := NewLog()
	m := &agents.Member{ID: 1, Name: "Ada Quill"}
	l.Report(m, water.Treated)
	l.Report(m, water.Untreated)

	recs := l.Unsaved()
	if len(recs) != 2 || l.Pending() != 2 {
		t.Fatalf("unsaved = %d, pending = %d", len(recs), l.Pending())
	}

	l.Report(m, water.Contaminated)
	l.Ack(len(recs))
	left := l.Drain()
	if len(left) != 1 || left[0].Tier != water.Contaminated {
		t.Fatalf("ack dropped the wrong records: %+v", left)
	}

	l.Ack(5)
	if l.Pending() != 0 {
		t.Fatalf("ack past the end should leave nothing")
	}
}
