package rules

// BlankRunLimit is the number of consecutive blank lines after which the
// next line is flagged with CodeBlankLines.
const BlankRunLimit = 3

// BlankRun counts consecutive blank lines within one file. The zero value
// is ready to use; a fresh BlankRun is needed per file.
type BlankRun struct {
	n int
}

// Next feeds the next physical line and reports whether a CodeBlankLines
// diagnostic is due on it. The check happens before line is counted, so the
// line right after the third blank one is flagged, whether or not it is
// blank itself, and the counter starts over.
func (b *BlankRun) Next(line string) bool {
	due := b.n == BlankRunLimit
	if due {
		b.n = 0
	}
	if IsBlank(line) {
		b.n++
	} else {
		b.n = 0
	}
	return due
}
