package epd

import (
	"errors"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestParse_FEN(t *testing.T) {
	p, err := Parse(startFEN)
	require.NoError(t, err)

	assert.Equal(t, startFEN, p.FEN)
	assert.Equal(t, chess.White, p.Turn())
	assert.Empty(t, p.BestMoves)
	assert.Equal(t, Placeholder, p.BestMoveSAN().String())
	assert.Equal(t, Placeholder, p.ID.String())
	assert.Equal(t, Placeholder, p.Comment.String())
}

func TestParse_EPDDefaultsClocks(t *testing.T) {
	p, err := Parse("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -")
	require.NoError(t, err)
	assert.Equal(t, startFEN, p.FEN)
}

func TestParse_EPDOpcodes(t *testing.T) {
	p, err := Parse(`rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - bm e4 Nf3; id "opening.001"; c0 "king's pawn  or knight";`)
	require.NoError(t, err)

	require.Len(t, p.BestMoves, 2)
	assert.Equal(t, "e4 Nf3", p.BestMoveSAN().String())

	id, ok := p.ID.Get()
	assert.True(t, ok)
	assert.Equal(t, "opening.001", id)
	assert.Equal(t, "king's pawn  or knight", p.Comment.String())
}

func TestParse_BlackToMove(t *testing.T) {
	p, err := Parse("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 bm e5;")
	require.NoError(t, err)
	assert.Equal(t, chess.Black, p.Turn())
	assert.Equal(t, "e5", p.BestMoveSAN().String())
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1", p.FEN)
}

func TestParse_EnPassantSquare(t *testing.T) {
	p, err := Parse("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	require.NoError(t, err)
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1", p.FEN, "no capture, square dropped")

	// Black's d-pawn can take e4 en passant, so the square stays.
	p, err = Parse("rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3")
	require.NoError(t, err)
	assert.Equal(t, "rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3", p.FEN)
}

func TestParse_CastlingWithZeros(t *testing.T) {
	p, err := Parse("r3k3/8/8/8/8/8/8/4K2R w K - bm 0-0;")
	require.NoError(t, err)
	assert.Equal(t, "O-O", p.BestMoveSAN().String())

	p, err = Parse("r3k3/8/8/8/8/8/8/4K2R b q - bm 0-0-0+;")
	require.NoError(t, err)
	assert.Equal(t, "O-O-O", p.BestMoveSAN().String())
	require.Len(t, p.BestMoves, 1)
	assert.Equal(t, chess.C8, p.BestMoves[0].S2())
}

func TestParse_StaleCheckSuffix(t *testing.T) {
	// Qxf7 mates, but the record only marks check.
	p, err := Parse("r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - bm Qxf7+;")
	require.NoError(t, err)
	assert.Equal(t, "Qxf7#", p.BestMoveSAN().String())
}

func TestParse_ClockOpcodes(t *testing.T) {
	p, err := Parse("4k3/8/8/8/8/8/8/4K2R w K - hmvc 7; fmvn 42;")
	require.NoError(t, err)
	assert.Equal(t, "4k3/8/8/8/8/8/8/4K2R w K - 7 42", p.FEN)
}

func TestParse_CheckSuffix(t *testing.T) {
	// Scholar's mate setup: Qxf7 is mate.
	p, err := Parse("r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - bm Qxf7#;")
	require.NoError(t, err)
	assert.Equal(t, "Qxf7#", p.BestMoveSAN().String())
}

func TestParse_BestMoveRoundTrip(t *testing.T) {
	records := []struct {
		record string
		dest   chess.Square
	}{
		{startFEN[:len(startFEN)-4] + " bm Nf3;", chess.F3},
		{"4k3/8/8/8/8/8/8/4K2R w K - bm O-O;", chess.G1},
		{"4k3/P7/8/8/8/8/8/4K3 w - - bm a8=Q+;", chess.A8},
	}
	notation := chess.AlgebraicNotation{}
	for _, tc := range records {
		p, err := Parse(tc.record)
		require.NoError(t, err, tc.record)
		san := p.BestMoveSAN().String()

		m, err := notation.Decode(p.Chess(), san)
		require.NoError(t, err, san)
		assert.Equal(t, tc.dest, m.S2(), "destination for %s", san)
	}
}

func TestParse_Errors(t *testing.T) {
	bad := []string{
		"",
		"not a position",
		"xxxxxxxx/8/8/8/8/8/8/8 w - -",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq -",
		startFEN[:len(startFEN)-4] + " bm Ke5;",
		startFEN[:len(startFEN)-4] + ` id "unterminated;`,
		startFEN[:len(startFEN)-4] + " 9x bad;",
		startFEN[:len(startFEN)-4] + " hmvc many;",
	}
	for _, record := range bad {
		_, err := Parse(record)
		require.Error(t, err, "record %q", record)

		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr), "record %q", record)
	}
}

func TestParseOperations_Escapes(t *testing.T) {
	ops, err := parseOperations(`c0 "say \"hi\" \\ bye"; id x`)
	require.NoError(t, err)
	assert.Equal(t, []string{"c0", "id"}, ops.order)
	assert.Equal(t, `say "hi" \ bye`, ops.text("c0").String())
	assert.Equal(t, "x", ops.text("id").String())
}

func TestParseOperations_EmptyOperand(t *testing.T) {
	ops, err := parseOperations("bm; id;")
	require.NoError(t, err)
	assert.True(t, ops.has("bm"))
	_, ok := ops.text("id").Get()
	assert.False(t, ok)
}

func TestValue(t *testing.T) {
	assert.Equal(t, "None", None().String())
	assert.Equal(t, "", Some("").String())
	v, ok := Some("abc").Get()
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}
