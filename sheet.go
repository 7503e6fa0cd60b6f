package tabsniff

import (
	"fmt"
	"slices"
)

// SheetNames returns the sheet names of the current workbook in tab order.
// It is empty for single-table sources.
func (p *Parser) SheetNames() []string {
	return slices.Clone(p.sheets)
}

// SheetCount returns the number of sheets, 0 for single-table sources
func (p *Parser) SheetCount() int {
	return len(p.sheets)
}

// SheetIndex returns the index of the selected sheet
func (p *Parser) SheetIndex() int {
	return p.sheet
}

// SelectSheet selects the sheet at index. For single-table sources only
// index 0 is accepted and selecting it changes nothing. Selecting a sheet of
// a workbook resets the schema and invalidates an open stream.
func (p *Parser) SelectSheet(index int) error {
	ec := NewErrorContext("select sheet", p.current.String())
	if p.closed {
		return ec.Error(ErrParserClosed)
	}
	count := max(len(p.sheets), 1)
	if index < 0 || index >= count {
		return ec.WithDetails(fmt.Sprintf("index %d out of range [0, %d)", index, count)).Error(ErrSheetNotFound)
	}
	if len(p.sheets) == 0 {
		return nil
	}
	p.sheet = index
	p.reset()
	return nil
}

// SelectSheetByName selects the sheet with the given name
func (p *Parser) SelectSheetByName(name string) error {
	index := slices.Index(p.sheets, name)
	if index < 0 {
		ec := NewErrorContext("select sheet", p.current.String())
		if p.closed {
			return ec.Error(ErrParserClosed)
		}
		return ec.WithSheet(name).Error(ErrSheetNotFound)
	}
	return p.SelectSheet(index)
}

// FileNames returns the tabular members of a ZIP archive in archive order.
// It is empty for other sources.
func (p *Parser) FileNames() []string {
	return slices.Clone(p.files)
}

// FileCount returns the number of tabular archive members
func (p *Parser) FileCount() int {
	return len(p.files)
}

// SelectFile selects the archive member at index and its first sheet.
// Selection resets the schema and invalidates an open stream.
func (p *Parser) SelectFile(index int) error {
	ec := NewErrorContext("select file", p.root.String())
	if p.closed {
		return ec.Error(ErrParserClosed)
	}
	if index < 0 || index >= len(p.files) {
		return ec.WithDetails(fmt.Sprintf("index %d out of range [0, %d)", index, len(p.files))).Error(ErrFileNotFound)
	}
	p.reset()
	if err := p.useFile(index); err != nil {
		return ec.Error(err)
	}
	return nil
}

// SelectFileByName selects the archive member with the given name
func (p *Parser) SelectFileByName(name string) error {
	index := slices.Index(p.files, name)
	if index < 0 {
		ec := NewErrorContext("select file", p.root.String())
		if p.closed {
			return ec.Error(ErrParserClosed)
		}
		return ec.WithDetails(name).Error(ErrFileNotFound)
	}
	return p.SelectFile(index)
}
