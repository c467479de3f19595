package annotate

import (
	"slices"
	"testing"

	"github.com/dgallion1/epd2doc/internal/epd"
)

const record = `rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - bm e4 d4; id "start"; c0 "opening";`

func mustParse(t *testing.T, s string) *epd.Position {
	t.Helper()
	p, err := epd.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return p
}

func TestCompose_AllFlags(t *testing.T) {
	pos := mustParse(t, record)
	p := Compose(pos, Flags{FEN: true, BM: true, ID: true, Comment: true})

	want := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"bm: e4 d4",
		"id: start",
		"c0: opening",
	}
	if got := p.Runs(); !slices.Equal(got, want) {
		t.Errorf("expected runs %q, got %q", want, got)
	}
	if p.Breaks() != 4 {
		t.Errorf("expected 4 breaks, got %d", p.Breaks())
	}
	if p.Items[len(p.Items)-1].Kind != KindBreak {
		t.Error("expected trailing break")
	}
	if p.Items[0].Kind != KindText {
		t.Error("paragraph must not start with a break")
	}
}

func TestCompose_NoFlags(t *testing.T) {
	p := Compose(mustParse(t, record), Flags{})
	if !p.Empty() {
		t.Errorf("expected empty paragraph, got %+v", p.Items)
	}
	if p.Breaks() != 0 {
		t.Errorf("expected no breaks, got %d", p.Breaks())
	}
}

func TestCompose_BreakCountAllSubsets(t *testing.T) {
	pos := mustParse(t, record)
	for mask := 0; mask < 16; mask++ {
		f := Flags{
			FEN:     mask&1 != 0,
			BM:      mask&2 != 0,
			ID:      mask&4 != 0,
			Comment: mask&8 != 0,
		}
		enabled := 0
		for _, on := range []bool{f.FEN, f.BM, f.ID, f.Comment} {
			if on {
				enabled++
			}
		}
		p := Compose(pos, f)

		wantBreaks := 0
		if enabled > 0 {
			wantBreaks = enabled
		}
		if p.Breaks() != wantBreaks {
			t.Errorf("mask %04b: expected %d breaks, got %d", mask, wantBreaks, p.Breaks())
		}
		if len(p.Runs()) != enabled {
			t.Errorf("mask %04b: expected %d runs, got %d", mask, enabled, len(p.Runs()))
		}
		for i := 1; i < len(p.Items); i++ {
			if p.Items[i].Kind == KindBreak && p.Items[i-1].Kind == KindBreak {
				t.Errorf("mask %04b: double break at %d", mask, i)
			}
		}
	}
}

func TestCompose_OrderIsFixed(t *testing.T) {
	pos := mustParse(t, record)
	p := Compose(pos, Flags{Comment: true, FEN: true})
	want := []string{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "c0: opening"}
	if got := p.Runs(); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCompose_MissingOpcodes(t *testing.T) {
	pos := mustParse(t, "8/8/8/4k3/8/8/8/4K3 b - -")
	p := Compose(pos, Flags{BM: true, ID: true, Comment: true})
	want := []string{"bm: None", "id: None", "c0: None"}
	if got := p.Runs(); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFold_SingleLateLine(t *testing.T) {
	p := Fold([]Line{{Text: "a"}, {Text: "b"}, {Enabled: true, Text: "c"}})
	if len(p.Items) != 2 || p.Items[0].Text != "c" || p.Items[1].Kind != KindBreak {
		t.Errorf("unexpected items: %+v", p.Items)
	}
}
