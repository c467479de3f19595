package doctree

// DocTree is a position document read back from its saved form.
type DocTree struct {
	Title    string     `json:"title"`    // Heading text
	Children []*DocNode `json:"children"` // One node per page, in document order
}

// DocNode is one page: a diagram and the annotation paragraph under it.
type DocNode struct {
	Text   string   `json:"text"`            // Annotation text; line breaks appear as "\n"
	Breaks int      `json:"breaks"`          // Number of line breaks in the annotation
	Image  *Picture `json:"image,omitempty"` // Diagram, nil if the page has none
	Page   int      `json:"page"`            // 1-based page number
}

// Picture describes an embedded diagram.
type Picture struct {
	WidthEMU  int64 `json:"width_emu"`
	HeightEMU int64 `json:"height_emu"`
}

// Lines splits the annotation into its non-empty lines.
func (n *DocNode) Lines() []string {
	var lines []string
	start := 0
	for i := 0; i <= len(n.Text); i++ {
		if i == len(n.Text) || n.Text[i] == '\n' {
			if i > start {
				lines = append(lines, n.Text[start:i])
			}
			start = i + 1
		}
	}
	return lines
}
