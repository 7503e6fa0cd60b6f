package model

// DatetimeFormats is the ordered list of patterns tried when inferring
// Date, Time and Datetime columns. For a column, the first pattern that
// matches every non-null value becomes the column format.
var DatetimeFormats = []string{
	// ISO 8601 with T separator
	"%Y-%m-%dT%H:%M:%S.%f%z",
	"%Y-%m-%dT%H:%M:%S%z",
	"%Y-%m-%dT%H:%M:%S.%f",
	"%Y-%m-%dT%H:%M:%S",
	"%Y-%m-%dT%H:%M",
	// ISO 8601 with space separator
	"%Y-%m-%d %H:%M:%S.%f%z",
	"%Y-%m-%d %H:%M:%S%z",
	"%Y-%m-%d %H:%M:%S.%f",
	"%Y-%m-%d %H:%M:%S",
	"%Y-%m-%d %H:%M:%S %z",
	"%Y-%m-%d %H:%M:%S %Z",
	"%Y-%m-%d %H:%M",
	"%Y-%m-%d",
	"%Y%m%dT%H%M%S",
	"%Y/%m/%d %H:%M:%S",
	"%Y/%m/%d %H:%M",
	"%Y/%m/%d",
	// month first
	"%m/%d/%Y %H:%M:%S",
	"%m/%d/%Y %I:%M:%S %p",
	"%m/%d/%Y %H:%M",
	"%m/%d/%Y %I:%M %p",
	"%m/%d/%Y",
	"%m/%d/%y",
	"%m-%d-%Y",
	// day first
	"%d/%m/%Y %H:%M:%S",
	"%d/%m/%Y %H:%M",
	"%d/%m/%Y",
	"%d/%m/%y",
	"%d.%m.%Y %H:%M:%S",
	"%d.%m.%Y %H:%M",
	"%d.%m.%Y",
	"%d-%m-%Y",
	// month names
	"%d-%b-%Y",
	"%d-%b-%y",
	"%d %b %Y",
	"%b %d, %Y",
	"%b %d %Y",
	"%a, %d %b %Y %H:%M:%S %z",
	"%a, %d %b %Y %H:%M:%S %Z",
	"%a %b %d %H:%M:%S %Y",
	// time of day
	"%H:%M:%S.%f",
	"%H:%M:%S",
	"%H:%M",
	"%I:%M:%S %p",
	"%I:%M %p",
	"%I:%M%p",
}

var datetimeLayouts = compileLayouts(DatetimeFormats)

func compileLayouts(patterns []string) []*Layout {
	layouts := make([]*Layout, len(patterns))
	for i, p := range patterns {
		layouts[i] = MustCompileLayout(p)
	}
	return layouts
}

// datetimeCandidates tracks which datetime layouts still match every value seen.
type datetimeCandidates struct {
	alive []bool
	left  int
}

func newDatetimeCandidates() *datetimeCandidates {
	alive := make([]bool, len(datetimeLayouts))
	for i := range alive {
		alive[i] = true
	}
	return &datetimeCandidates{alive: alive, left: len(alive)}
}

// observe removes every layout that fails to parse value
func (dc *datetimeCandidates) observe(value string) {
	if dc.left == 0 {
		return
	}
	for i, ok := range dc.alive {
		if !ok {
			continue
		}
		if _, err := datetimeLayouts[i].Parse(value); err != nil {
			dc.alive[i] = false
			dc.left--
		}
	}
}

// best returns the first surviving layout in list order
func (dc *datetimeCandidates) best() (*Layout, bool) {
	for i, ok := range dc.alive {
		if ok {
			return datetimeLayouts[i], true
		}
	}
	return nil, false
}
