package epd

// Placeholder is rendered for an opcode the record does not carry.
const Placeholder = "None"

// Value is an optional opcode operand.
type Value struct {
	text string
	ok   bool
}

func Some(text string) Value { return Value{text: text, ok: true} }

func None() Value { return Value{} }

// Get returns the operand text and whether the opcode was present.
func (v Value) Get() (string, bool) { return v.text, v.ok }

// String returns the operand text, or Placeholder when absent.
func (v Value) String() string {
	if !v.ok {
		return Placeholder
	}
	return v.text
}
