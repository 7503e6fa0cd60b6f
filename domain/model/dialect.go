package model

import (
	"errors"
	"strings"
)

// Default bounds for the inference sample
const (
	// DefaultSampleRows is the number of lines sniffed and inferred over
	DefaultSampleRows = 100
	// DefaultSampleBytes is the number of bytes read for sniffing
	DefaultSampleBytes = 64 * 1024
)

// Dialect is the set of lexical conventions of a delimited text source.
// A zero rune or empty string means the parameter is absent.
type Dialect struct {
	Delimiter rune
	Quote     rune
	Escape    rune
	Newline   string
	Comment   string
}

var (
	// delimiterCandidates in preference order
	delimiterCandidates = []rune{',', '\t', ';', '|'}
	// quoteCandidates in preference order
	quoteCandidates = []rune{'"', '\''}
	// commentCandidates in preference order
	commentCandidates = []string{"#", "//", "--", "%", ";"}
	// newlineCandidates in preference order
	newlineCandidates = []string{"\r\n", "\n", "\r"}
)

// dialectScore ranks a candidate dialect over a sample
type dialectScore struct {
	run   int // longest contiguous run of records sharing one field count
	total int // records carrying that field count
	width int // the field count itself
}

func (s dialectScore) better(o dialectScore) bool {
	if s.run != o.run {
		return s.run > o.run
	}
	return s.total > o.total
}

// SniffDialect determines the dialect of a decoded text sample. The sample
// should already be cut at a line boundary. It returns ErrNoDialect when the
// sample holds no records.
func SniffDialect(sample string) (Dialect, error) {
	if strings.TrimSpace(sample) == "" {
		return Dialect{}, ErrNoDialect
	}

	best, score := sniffWithComment(sample, "")
	if comment := detectComment(sample, best, score.width); comment != "" {
		best, score = sniffWithComment(sample, comment)
	}
	if score.width <= 1 {
		// single column: every record is one field
		best.Delimiter = delimiterCandidates[0]
		best.Quote = quoteCandidates[0]
		best.Escape = 0
	}
	best.Newline = DetectNewline(sample)
	return best, nil
}

func sniffWithComment(sample, comment string) (Dialect, dialectScore) {
	var (
		best      Dialect
		bestScore dialectScore
		found     bool
	)
	for _, delim := range delimiterCandidates {
		if comment != "" && strings.ContainsRune(comment, delim) {
			continue
		}
		quote := detectQuote(sample, delim, comment)
		d := Dialect{Delimiter: delim, Quote: quote, Escape: detectEscape(sample, quote), Comment: comment}
		s := scoreDialect(sample, d)
		if !found || s.better(bestScore) {
			best, bestScore, found = d, s, true
		}
	}
	return best, bestScore
}

// detectQuote returns the candidate that opens the most fields when lines are
// split on delim. Ties and samples without quoted fields yield the first
// candidate.
func detectQuote(sample string, delim rune, comment string) rune {
	counts := make([]int, len(quoteCandidates))
	for _, line := range splitLines(sample) {
		if comment != "" && strings.HasPrefix(strings.TrimLeft(line, " \t"), comment) {
			continue
		}
		for _, field := range strings.Split(line, string(delim)) {
			field = strings.TrimLeft(field, " ")
			for i, q := range quoteCandidates {
				if strings.HasPrefix(field, string(q)) {
					counts[i]++
				}
			}
		}
	}
	best := 0
	for i := range quoteCandidates {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return quoteCandidates[best]
}

// scoreDialect tokenizes the sample and measures how stable the field count is
func scoreDialect(sample string, d Dialect) dialectScore {
	records, err := TokenizeAll(sample, d)
	if err != nil && !errors.Is(err, ErrMalformedQuoting) {
		return dialectScore{}
	}

	var (
		best    dialectScore
		runLen  int
		runW    int
		totals  = map[int]int{}
		longest = map[int]int{}
	)
	for _, rec := range records {
		if rec.Comment || rec.IsBlank() {
			continue
		}
		w := len(rec.Fields)
		totals[w]++
		if w == runW {
			runLen++
		} else {
			runW, runLen = w, 1
		}
		if runLen > longest[w] {
			longest[w] = runLen
		}
	}
	for w, run := range longest {
		if w <= 1 {
			continue
		}
		s := dialectScore{run: run, total: totals[w], width: w}
		if s.better(best) || (!best.better(s) && w > best.width) {
			best = s
		}
	}
	if best.width == 0 && totals[1] > 0 {
		best = dialectScore{width: 1, total: totals[1]}
	}
	return best
}

// detectEscape reports a backslash escape when backslash-quote pairs occur
// and doubled quotes never do
func detectEscape(sample string, quote rune) rune {
	q := string(quote)
	if strings.Contains(sample, `\`+q) && !strings.Contains(sample, q+q) {
		return '\\'
	}
	return 0
}

// detectComment returns the comment marker whose marked lines mostly fall
// outside the stable field count, or "" when there is none.
func detectComment(sample string, d Dialect, width int) string {
	lines := splitLines(sample)
	var (
		best      string
		bestCount int
	)
	for _, marker := range commentCandidates {
		if strings.ContainsRune(marker, d.Delimiter) {
			continue
		}
		marked, deviating := 0, 0
		for _, line := range lines {
			if !strings.HasPrefix(strings.TrimLeft(line, " \t"), marker) {
				continue
			}
			marked++
			recs, err := TokenizeAll(line, Dialect{Delimiter: d.Delimiter, Quote: d.Quote, Escape: d.Escape})
			if err != nil || len(recs) != 1 || len(recs[0].Fields) != width {
				deviating++
			}
		}
		if marked == 0 || deviating*2 < marked {
			continue
		}
		if marked > bestCount {
			best, bestCount = marker, marked
		}
	}
	return best
}

// DetectNewline returns the most frequent line terminator of the sample,
// or "" when the sample holds no line break
func DetectNewline(sample string) string {
	counts := map[string]int{}
	for i := 0; i < len(sample); i++ {
		switch sample[i] {
		case '\r':
			if i+1 < len(sample) && sample[i+1] == '\n' {
				counts["\r\n"]++
				i++
			} else {
				counts["\r"]++
			}
		case '\n':
			counts["\n"]++
		}
	}
	best, bestCount := "", 0
	for _, nl := range newlineCandidates {
		if counts[nl] > bestCount {
			best, bestCount = nl, counts[nl]
		}
	}
	return best
}

// splitLines splits text on any line terminator
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// CutSample bounds a decoded sample to maxLines physical lines. When the
// byte bound truncated the sample, the trailing partial line is dropped.
func CutSample(text string, maxLines int, truncated bool) string {
	if truncated {
		if i := strings.LastIndexAny(text, "\r\n"); i >= 0 {
			text = text[:i+1]
		}
	}
	if maxLines <= 0 {
		return text
	}
	lines := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\n' && c != '\r' {
			continue
		}
		if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
		lines++
		if lines == maxLines {
			return text[:i+1]
		}
	}
	return text
}
