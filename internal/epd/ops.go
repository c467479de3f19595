package epd

import (
	"fmt"
	"strings"
)

// operations holds the opcodes of one record in the order they appear.
type operations struct {
	order    []string
	operands map[string][]string
}

func (o operations) has(opcode string) bool {
	_, ok := o.operands[opcode]
	return ok
}

// text joins the operands of opcode with single spaces.
func (o operations) text(opcode string) Value {
	args, ok := o.operands[opcode]
	if !ok || len(args) == 0 {
		return None()
	}
	return Some(strings.Join(args, " "))
}

// parseOperations reads `opcode operand...;` groups. Operands may be double
// quoted, with \" and \\ escapes. The final semicolon is optional.
func parseOperations(s string) (operations, error) {
	ops := operations{operands: make(map[string][]string)}
	i, n := 0, len(s)

	skipSpace := func() {
		for i < n && isSpace(s[i]) {
			i++
		}
	}

	for {
		skipSpace()
		if i >= n {
			return ops, nil
		}

		start := i
		for i < n && !isSpace(s[i]) && s[i] != ';' {
			i++
		}
		opcode := s[start:i]
		if !validOpcode(opcode) {
			return ops, fmt.Errorf("invalid opcode %q", opcode)
		}
		if !ops.has(opcode) {
			ops.order = append(ops.order, opcode)
		}
		var args []string

	operands:
		for {
			skipSpace()
			switch {
			case i >= n:
				break operands
			case s[i] == ';':
				i++
				break operands
			case s[i] == '"':
				var sb strings.Builder
				i++
				closed := false
				for i < n {
					c := s[i]
					if c == '\\' && i+1 < n && (s[i+1] == '"' || s[i+1] == '\\') {
						sb.WriteByte(s[i+1])
						i += 2
						continue
					}
					i++
					if c == '"' {
						closed = true
						break
					}
					sb.WriteByte(c)
				}
				if !closed {
					return ops, fmt.Errorf("unterminated string operand for %s", opcode)
				}
				args = append(args, sb.String())
			default:
				start := i
				for i < n && !isSpace(s[i]) && s[i] != ';' {
					i++
				}
				args = append(args, s[start:i])
			}
		}
		ops.operands[opcode] = args
	}
}

// validOpcode accepts a letter followed by letters, digits or underscores.
func validOpcode(op string) bool {
	if op == "" || len(op) > 15 || !isLetter(op[0]) {
		return false
	}
	for i := 1; i < len(op); i++ {
		c := op[i]
		if !isLetter(c) && !(c >= '0' && c <= '9') && c != '_' {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isSpace(c byte) bool { return c == ' ' || c == '\t' }
