// Package epd parses EPD and FEN position records.
package epd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

// ParseError reports a record that is not a valid EPD or FEN string.
type ParseError struct {
	Record string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse position %q: %v", e.Record, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Position is one parsed record.
type Position struct {
	// FEN is the canonical six-field FEN of the position.
	FEN string
	// BestMoves holds the moves named by the bm opcode, in record order.
	BestMoves []*chess.Move
	// ID and Comment are the id and c0 opcodes.
	ID      Value
	Comment Value

	hasBM bool
	pos   *chess.Position
}

// Turn returns the side to move.
func (p *Position) Turn() chess.Color { return p.pos.Turn() }

// Board returns the piece placement.
func (p *Position) Board() *chess.Board { return p.pos.Board() }

// Chess returns the underlying position.
func (p *Position) Chess() *chess.Position { return p.pos }

// BestMoveSAN returns the bm moves in short algebraic notation joined by
// single spaces, or None when the record has no bm opcode.
func (p *Position) BestMoveSAN() Value {
	if !p.hasBM || len(p.BestMoves) == 0 {
		return None()
	}
	notation := chess.AlgebraicNotation{}
	sans := make([]string, len(p.BestMoves))
	for i, m := range p.BestMoves {
		sans[i] = notation.Encode(p.pos, m)
	}
	return Some(strings.Join(sans, " "))
}

// Parse reads a single EPD or FEN record. The first four fields are the
// position. What follows is either the two FEN move counters or a list of
// EPD operations; hmvc and fmvn operations set the counters.
func Parse(record string) (*Position, error) {
	p, err := parse(strings.TrimSpace(record))
	if err != nil {
		return nil, &ParseError{Record: record, Err: err}
	}
	return p, nil
}

func parse(record string) (*Position, error) {
	fields := strings.Fields(record)
	if len(fields) < 4 {
		return nil, errors.New("expected at least 4 fields")
	}

	// Locate the remainder after the fourth field without disturbing quoted
	// operands that may contain runs of spaces.
	rest := record
	for i := 0; i < 4; i++ {
		rest = strings.TrimLeft(rest, " \t")
		if idx := strings.IndexAny(rest, " \t"); idx >= 0 {
			rest = rest[idx:]
		} else {
			rest = ""
		}
	}
	rest = strings.TrimSpace(rest)

	halfmove, fullmove := "0", "1"
	ops := operations{operands: map[string][]string{}}

	if clocks, ok := fenClocks(rest); ok {
		halfmove, fullmove = clocks[0], clocks[1]
	} else if rest != "" {
		var err error
		ops, err = parseOperations(rest)
		if err != nil {
			return nil, err
		}
		if v, ok := ops.text("hmvc").Get(); ok {
			if _, err := strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("invalid hmvc %q", v)
			}
			halfmove = v
		}
		if v, ok := ops.text("fmvn").Get(); ok {
			if _, err := strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("invalid fmvn %q", v)
			}
			fullmove = v
		}
	}

	fen := strings.Join([]string{fields[0], fields[1], fields[2], fields[3], halfmove, fullmove}, " ")
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, err
	}
	pos := chess.NewGame(opt).Position()

	p := &Position{
		FEN:     canonicalFEN(pos),
		ID:      ops.text("id"),
		Comment: ops.text("c0"),
		hasBM:   ops.has("bm"),
		pos:     pos,
	}

	notation := chess.AlgebraicNotation{}
	for _, san := range ops.operands["bm"] {
		m, err := decodeSAN(notation, pos, san)
		if err != nil {
			return nil, fmt.Errorf("bm %q: %w", san, err)
		}
		p.BestMoves = append(p.BestMoves, m)
	}

	return p, nil
}

// canonicalFEN prints the position, keeping the en passant square only when
// an en passant capture is actually available.
func canonicalFEN(pos *chess.Position) string {
	fen := pos.String()
	if pos.EnPassantSquare() == chess.NoSquare {
		return fen
	}
	for _, m := range pos.ValidMoves() {
		if m.HasTag(chess.EnPassant) {
			return fen
		}
	}
	fields := strings.Fields(fen)
	fields[3] = "-"
	return strings.Join(fields, " ")
}

// decodeSAN accepts castling written with zeros and a check or mate suffix
// that disagrees with the position.
func decodeSAN(notation chess.AlgebraicNotation, pos *chess.Position, san string) (*chess.Move, error) {
	switch {
	case strings.HasPrefix(san, "0-0-0"):
		san = "O-O-O" + san[len("0-0-0"):]
	case strings.HasPrefix(san, "0-0"):
		san = "O-O" + san[len("0-0"):]
	}
	m, err := notation.Decode(pos, san)
	if err == nil {
		return m, nil
	}
	if bare := strings.TrimRight(san, "+#!?"); bare != san {
		if m, retry := notation.Decode(pos, bare); retry == nil {
			return m, nil
		}
	}
	return nil, err
}

// fenClocks reports whether rest is exactly the two FEN move counters.
func fenClocks(rest string) ([2]string, bool) {
	var out [2]string
	if strings.Contains(rest, ";") {
		return out, false
	}
	parts := strings.Fields(rest)
	if len(parts) != 2 {
		return out, false
	}
	for i, s := range parts {
		if _, err := strconv.Atoi(s); err != nil {
			return out, false
		}
		out[i] = s
	}
	return out, true
}
