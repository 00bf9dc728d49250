package ingest

import "strings"

// Tokenize splits raw CSV text into rows of trimmed cells with a single
// left-to-right scan. It accepts the messy exports the spreadsheets
// actually produce:
//
//   - double-quoted cells may contain commas and newlines
//   - an escaped quote is encoded as two consecutive quotes inside a
//     quoted cell
//   - \n and \r are row separators only outside an open quote, so \r\n
//     never yields phantom blank rows
//   - consecutive delimiters produce empty cells, not an error
//   - an unterminated quote runs to end of input without failing
//   - a trailing cell or row with no terminator is still emitted
//
// Blank lines are skipped. The tokenizer knows nothing about semantic
// field names; see MapRows for that.
func Tokenize(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		cell     strings.Builder
		inQuotes bool
	)

	flushCell := func() {
		row = append(row, strings.TrimSpace(cell.String()))
		cell.Reset()
	}
	flushRow := func() {
		// A line holding only whitespace is a blank line, not a
		// one-cell row.
		if len(row) == 0 && strings.TrimSpace(cell.String()) == "" {
			cell.Reset()
			return
		}
		flushCell()
		rows = append(rows, row)
		row = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				cell.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			flushCell()
		case (c == '\n' || c == '\r') && !inQuotes:
			flushRow()
		default:
			cell.WriteRune(c)
		}
	}
	flushRow()

	return rows
}
