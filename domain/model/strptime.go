package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Layout is a compiled strftime-style pattern such as "%Y-%m-%d %H:%M:%S".
//
// Supported directives: %Y %y %m %d %H %I %M %S %f %p %b %B %a %A %z %Z %%.
// A run of whitespace in the pattern matches any non-empty run of whitespace.
type Layout struct {
	pattern string
	items   []layoutItem
	hasDate bool
	hasTime bool
}

type layoutItem struct {
	directive byte   // 0 for literal text
	literal   string // literal text or the whitespace run
	space     bool
}

var (
	monthNames = []string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
	weekdayNames = []string{
		"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
	}
)

// CompileLayout compiles a strftime pattern
func CompileLayout(pattern string) (*Layout, error) {
	l := &Layout{pattern: pattern}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			l.items = append(l.items, layoutItem{literal: lit.String()})
			lit.Reset()
		}
	}

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '%':
			if i+1 >= len(runes) {
				return nil, fmt.Errorf("pattern %q ends with a bare %%", pattern)
			}
			i++
			d := runes[i]
			if d == '%' {
				lit.WriteRune('%')
				continue
			}
			if !strings.ContainsRune("YymdHIMSfpbBaAzZ", d) {
				return nil, fmt.Errorf("pattern %q: unsupported directive %%%c", pattern, d)
			}
			flush()
			l.items = append(l.items, layoutItem{directive: byte(d)})
			switch d {
			case 'Y', 'y', 'm', 'd', 'b', 'B', 'a', 'A':
				l.hasDate = true
			case 'H', 'I', 'M', 'S', 'f', 'p':
				l.hasTime = true
			}
		case unicode.IsSpace(r):
			flush()
			j := i
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			l.items = append(l.items, layoutItem{literal: string(runes[i:j]), space: true})
			i = j - 1
		default:
			lit.WriteRune(r)
		}
	}
	flush()
	return l, nil
}

// MustCompileLayout is like CompileLayout but panics on error
func MustCompileLayout(pattern string) *Layout {
	l, err := CompileLayout(pattern)
	if err != nil {
		panic(err)
	}
	return l
}

// Pattern returns the source pattern
func (l *Layout) Pattern() string {
	return l.pattern
}

// Type returns the column type values of this layout produce
func (l *Layout) Type() ColumnType {
	switch {
	case l.hasDate && l.hasTime:
		return ColumnTypeDatetime
	case l.hasTime:
		return ColumnTypeTime
	default:
		return ColumnTypeDate
	}
}

type parsedClock struct {
	year, month, day         int
	hour, minute, second, ns int
	pm, hasPM, twelveHour    bool
	loc                      *time.Location
}

// Parse parses s under the layout. Fields the layout does not carry default
// to 1900-01-01 00:00:00 UTC.
func (l *Layout) Parse(s string) (time.Time, error) {
	c := parsedClock{year: 1900, month: 1, day: 1, loc: time.UTC}
	rest := s
	var err error
	for _, it := range l.items {
		if it.space {
			trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
			if len(trimmed) == len(rest) {
				return time.Time{}, l.mismatch(s)
			}
			rest = trimmed
			continue
		}
		if it.directive == 0 {
			if !strings.HasPrefix(rest, it.literal) {
				return time.Time{}, l.mismatch(s)
			}
			rest = rest[len(it.literal):]
			continue
		}
		rest, err = c.consume(it.directive, rest)
		if err != nil {
			return time.Time{}, l.mismatch(s)
		}
	}
	if rest != "" {
		return time.Time{}, l.mismatch(s)
	}
	return c.build(s, l)
}

func (l *Layout) mismatch(s string) error {
	return fmt.Errorf("%w: %q does not match %q", ErrFormatMismatch, s, l.pattern)
}

func (c *parsedClock) consume(d byte, s string) (string, error) {
	var (
		v   int
		err error
	)
	switch d {
	case 'Y':
		v, s, err = takeDigits(s, 4, 4)
		c.year = v
	case 'y':
		v, s, err = takeDigits(s, 2, 2)
		if v < 69 {
			c.year = 2000 + v
		} else {
			c.year = 1900 + v
		}
	case 'm':
		v, s, err = takeRange(s, 1, 12)
		c.month = v
	case 'd':
		v, s, err = takeRange(s, 1, 31)
		c.day = v
	case 'H':
		v, s, err = takeRange(s, 0, 23)
		c.hour = v
	case 'I':
		v, s, err = takeRange(s, 1, 12)
		c.hour = v
		c.twelveHour = true
	case 'M':
		v, s, err = takeRange(s, 0, 59)
		c.minute = v
	case 'S':
		v, s, err = takeRange(s, 0, 59)
		c.second = v
	case 'f':
		n := 0
		for n < len(s) && n < 9 && s[n] >= '0' && s[n] <= '9' {
			n++
		}
		if n == 0 {
			return s, ErrFormatMismatch
		}
		frac := s[:n] + strings.Repeat("0", 9-n)
		c.ns, _ = strconv.Atoi(frac)
		s = s[n:]
	case 'p':
		switch {
		case hasPrefixFold(s, "AM"):
			c.hasPM, c.pm = true, false
		case hasPrefixFold(s, "PM"):
			c.hasPM, c.pm = true, true
		default:
			return s, ErrFormatMismatch
		}
		s = s[2:]
	case 'b', 'B':
		idx, rest, ok := takeName(s, monthNames)
		if !ok {
			return s, ErrFormatMismatch
		}
		c.month = idx + 1
		s = rest
	case 'a', 'A':
		_, rest, ok := takeName(s, weekdayNames)
		if !ok {
			return s, ErrFormatMismatch
		}
		s = rest
	case 'z':
		c.loc, s, err = takeOffset(s)
	case 'Z':
		switch {
		case strings.HasPrefix(s, "UTC"), strings.HasPrefix(s, "GMT"):
			s = s[3:]
		case strings.HasPrefix(s, "Z"):
			s = s[1:]
		default:
			return s, ErrFormatMismatch
		}
		c.loc = time.UTC
	}
	return s, err
}

func (c *parsedClock) build(s string, l *Layout) (time.Time, error) {
	hour := c.hour
	if c.twelveHour && c.hasPM {
		hour %= 12
		if c.pm {
			hour += 12
		}
	} else if c.hasPM && hour > 12 {
		return time.Time{}, l.mismatch(s)
	}
	t := time.Date(c.year, time.Month(c.month), c.day, hour, c.minute, c.second, c.ns, c.loc)
	if t.Day() != c.day || int(t.Month()) != c.month {
		return time.Time{}, l.mismatch(s)
	}
	return t, nil
}

func takeDigits(s string, minWidth, maxWidth int) (int, string, error) {
	n := 0
	for n < len(s) && n < maxWidth && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n < minWidth {
		return 0, s, ErrFormatMismatch
	}
	v, err := strconv.Atoi(s[:n])
	if err != nil {
		return 0, s, ErrFormatMismatch
	}
	return v, s[n:], nil
}

func takeRange(s string, lo, hi int) (int, string, error) {
	v, rest, err := takeDigits(s, 1, 2)
	if err != nil {
		return 0, s, err
	}
	if v < lo || v > hi {
		return 0, s, ErrFormatMismatch
	}
	return v, rest, nil
}

// takeName matches a full name or its three-letter abbreviation, case-insensitively
func takeName(s string, names []string) (int, string, bool) {
	for i, name := range names {
		if hasPrefixFold(s, name) {
			return i, s[len(name):], true
		}
	}
	for i, name := range names {
		if hasPrefixFold(s, name[:3]) {
			return i, s[3:], true
		}
	}
	return 0, s, false
}

func takeOffset(s string) (*time.Location, string, error) {
	if strings.HasPrefix(s, "Z") {
		return time.UTC, s[1:], nil
	}
	if s == "" || (s[0] != '+' && s[0] != '-') {
		return nil, s, ErrFormatMismatch
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	rest := s[1:]
	hh, rest, err := takeDigits(rest, 2, 2)
	if err != nil || hh > 23 {
		return nil, s, ErrFormatMismatch
	}
	mm := 0
	if strings.HasPrefix(rest, ":") {
		rest = rest[1:]
	}
	if len(rest) >= 2 && rest[0] >= '0' && rest[0] <= '9' {
		mm, rest, err = takeDigits(rest, 2, 2)
		if err != nil || mm > 59 {
			return nil, s, ErrFormatMismatch
		}
	}
	offset := sign * (hh*3600 + mm*60)
	if offset == 0 {
		return time.UTC, rest, nil
	}
	return time.FixedZone("", offset), rest, nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// Format renders t under the layout, so that Parse(Format(t)) yields t again
func (l *Layout) Format(t time.Time) string {
	var sb strings.Builder
	for _, it := range l.items {
		if it.directive == 0 {
			sb.WriteString(it.literal)
			continue
		}
		switch it.directive {
		case 'Y':
			fmt.Fprintf(&sb, "%04d", t.Year())
		case 'y':
			fmt.Fprintf(&sb, "%02d", t.Year()%100)
		case 'm':
			fmt.Fprintf(&sb, "%02d", int(t.Month()))
		case 'd':
			fmt.Fprintf(&sb, "%02d", t.Day())
		case 'H':
			fmt.Fprintf(&sb, "%02d", t.Hour())
		case 'I':
			h := t.Hour() % 12
			if h == 0 {
				h = 12
			}
			fmt.Fprintf(&sb, "%02d", h)
		case 'M':
			fmt.Fprintf(&sb, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(&sb, "%02d", t.Second())
		case 'f':
			if ns := t.Nanosecond(); ns%1000 == 0 {
				fmt.Fprintf(&sb, "%06d", ns/1000)
			} else {
				fmt.Fprintf(&sb, "%09d", ns)
			}
		case 'p':
			if t.Hour() < 12 {
				sb.WriteString("AM")
			} else {
				sb.WriteString("PM")
			}
		case 'b':
			sb.WriteString(monthNames[t.Month()-1][:3])
		case 'B':
			sb.WriteString(monthNames[t.Month()-1])
		case 'a':
			sb.WriteString(weekdayNames[t.Weekday()][:3])
		case 'A':
			sb.WriteString(weekdayNames[t.Weekday()])
		case 'z':
			_, offset := t.Zone()
			sign := '+'
			if offset < 0 {
				sign = '-'
				offset = -offset
			}
			fmt.Fprintf(&sb, "%c%02d%02d", sign, offset/3600, offset%3600/60)
		case 'Z':
			if _, offset := t.Zone(); offset == 0 {
				sb.WriteString("UTC")
			} else {
				sb.WriteString(t.Format("MST"))
			}
		}
	}
	return sb.String()
}
