package compiler

import "golang.org/x/text/unicode/bidi"

// visualGlyphOrder returns a permutation of [0, glyphCount) describing the
// order glyphs should be emitted in so that atlas-texture batching groups
// them by visual adjacency rather than logical (storage) adjacency. text is
// the TextItem's optional original string, one rune per glyph; when empty
// or mismatched in rune count, the identity order is returned unchanged
// (spec §4.4 treats glyphs as already visual-order by default).
//
// Grounded on the teacher's text/segment.go BuiltinSegmenter.computeBidiLevels,
// which drives golang.org/x/text/unicode/bidi.Paragraph the same way.
func visualGlyphOrder(text string, glyphCount int) []int {
	order := make([]int, glyphCount)
	for i := range order {
		order[i] = i
	}
	if text == "" {
		return order
	}
	runes := []rune(text)
	if len(runes) != glyphCount {
		return order
	}

	var p bidi.Paragraph
	if _, err := p.SetString(text); err != nil {
		return order
	}
	ordering, err := p.Order()
	if err != nil {
		return order
	}

	visual := make([]int, 0, glyphCount)
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		start, end := run.Pos()
		if run.Direction() == bidi.RightToLeft {
			for j := end; j >= start; j-- {
				visual = append(visual, j)
			}
		} else {
			for j := start; j <= end; j++ {
				visual = append(visual, j)
			}
		}
	}
	if len(visual) != glyphCount {
		return order
	}
	return visual
}
