package model

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// commentPeekSize bounds how far ahead the tokenizer looks for a comment marker
const commentPeekSize = 64

// Tokenizer splits decoded text into records under a fixed Dialect.
// Quoted fields may span several physical lines; any of \r\n, \n or \r ends
// an unquoted record.
type Tokenizer struct {
	r       *bufio.Reader
	dialect Dialect
	line    int
	done    bool
}

// NewTokenizer creates a Tokenizer reading UTF-8 text from r
func NewTokenizer(r io.Reader, d Dialect) *Tokenizer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Tokenizer{r: br, dialect: d, line: 1}
}

// Line returns the physical line the next record starts on
func (t *Tokenizer) Line() int {
	return t.line
}

// Read returns the next record. It returns io.EOF when the input is exhausted
// and a *QuoteError when the input ends inside a quoted field.
func (t *Tokenizer) Read() (Record, error) {
	if t.done {
		return Record{}, io.EOF
	}
	if t.dialect.Comment != "" && t.atComment() {
		return t.readComment()
	}
	return t.readFields()
}

func (t *Tokenizer) atComment() bool {
	buf, _ := t.r.Peek(commentPeekSize)
	s := strings.TrimLeft(string(buf), " \t")
	return strings.HasPrefix(s, t.dialect.Comment)
}

func (t *Tokenizer) readComment() (Record, error) {
	rec := Record{Line: t.line, Comment: true}
	var sb strings.Builder
	for {
		r, _, err := t.r.ReadRune()
		if errors.Is(err, io.EOF) {
			t.done = true
			break
		}
		if err != nil {
			return Record{}, err
		}
		if r == '\n' {
			t.line++
			break
		}
		if r == '\r' {
			t.skipLF()
			t.line++
			break
		}
		sb.WriteRune(r)
	}
	rec.Fields = []string{sb.String()}
	return rec, nil
}

func (t *Tokenizer) readFields() (Record, error) {
	var (
		rec       = Record{Line: t.line}
		field     strings.Builder
		inQuotes  bool
		quoted    bool
		quoteLine int
		consumed  bool
	)
	d := t.dialect

	finish := func() {
		rec.Fields = append(rec.Fields, field.String())
		field.Reset()
		quoted = false
	}

	for {
		r, _, err := t.r.ReadRune()
		if errors.Is(err, io.EOF) {
			t.done = true
			if inQuotes {
				return Record{}, &QuoteError{Line: quoteLine}
			}
			if !consumed {
				return Record{}, io.EOF
			}
			finish()
			return rec, nil
		}
		if err != nil {
			return Record{}, err
		}
		consumed = true

		if inQuotes {
			switch {
			case d.Escape != 0 && r == d.Escape && d.Escape != d.Quote:
				next, _, err := t.r.ReadRune()
				if err != nil {
					t.done = true
					return Record{}, &QuoteError{Line: quoteLine}
				}
				t.countNewline(next)
				field.WriteRune(next)
			case r == d.Quote:
				if next, _, err := t.r.ReadRune(); err == nil {
					if next == d.Quote {
						field.WriteRune(d.Quote)
						continue
					}
					_ = t.r.UnreadRune()
				}
				inQuotes = false
			case r == '\r':
				field.WriteRune(r)
				if next, _, err := t.r.ReadRune(); err == nil {
					if next == '\n' {
						field.WriteRune(next)
					} else {
						_ = t.r.UnreadRune()
					}
				}
				t.line++
			default:
				t.countNewline(r)
				field.WriteRune(r)
			}
			continue
		}

		switch {
		case r == d.Delimiter:
			finish()
		case r == '\n':
			t.line++
			finish()
			return rec, nil
		case r == '\r':
			t.skipLF()
			t.line++
			finish()
			return rec, nil
		case d.Quote != 0 && r == d.Quote && field.Len() == 0 && !quoted:
			inQuotes = true
			quoted = true
			quoteLine = t.line
		default:
			field.WriteRune(r)
		}
	}
}

func (t *Tokenizer) skipLF() {
	if next, _, err := t.r.ReadRune(); err == nil && next != '\n' {
		_ = t.r.UnreadRune()
	}
}

func (t *Tokenizer) countNewline(r rune) {
	if r == '\n' {
		t.line++
	}
}

// TokenizeAll splits the whole text into records
func TokenizeAll(text string, d Dialect) ([]Record, error) {
	tok := NewTokenizer(strings.NewReader(text), d)
	var records []Record
	for {
		rec, err := tok.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
