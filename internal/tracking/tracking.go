// Package tracking reads and patches free-form tracking documents
// (STATE.md style). Two shapes are recognized: inline labeled fields
// written as `**Name:** value` on their own line, and named sections
// introduced by a markdown heading and running until the next heading of
// the same or higher level.
//
// The document is parsed into an indexed line model first and spliced
// through that model, never by blind regex replacement over the whole
// text, so a lookalike field inside a code block or a later section does
// not get mis-targeted by position-sensitive operations.
package tracking

import (
	"errors"
	"regexp"
	"strings"
)

// ErrFieldNotFound is the soft-failure sentinel for a field the document
// does not carry. Callers log it and continue.
var ErrFieldNotFound = errors.New("tracking: field not found")

// ErrSectionNotFound reports a heading that matched none of the accepted
// spellings.
var ErrSectionNotFound = errors.New("tracking: section not found")

var (
	fieldRe    = regexp.MustCompile(`^\*\*([^*]+?):\*\*\s*(.*)$`)
	headingRe  = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*$`)
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// placeholders are body lines treated as "empty" when appending to a
// running-list section.
var placeholders = map[string]bool{
	"none":     true,
	"none yet": true,
	"n/a":      true,
	"-":        true,
}

// field is one parsed inline field occurrence.
type field struct {
	name  string
	value string
	line  int
}

// section is one parsed heading span. body covers [bodyStart, bodyEnd).
type section struct {
	title     string
	level     int
	headLine  int
	bodyStart int
	bodyEnd   int
}

// Document is the parsed line model of a tracking document.
type Document struct {
	lines    []string
	fields   []field
	sections []section
}

// Parse builds the line model for content.
func Parse(content string) *Document {
	d := &Document{lines: strings.Split(content, "\n")}
	d.reindex()
	return d
}

// reindex rebuilds the field and section indexes from the current lines.
func (d *Document) reindex() {
	d.fields = d.fields[:0]
	d.sections = d.sections[:0]

	for i, line := range d.lines {
		if m := fieldRe.FindStringSubmatch(line); m != nil {
			d.fields = append(d.fields, field{name: m[1], value: m[2], line: i})
		}
		if m := headingRe.FindStringSubmatch(line); m != nil {
			d.sections = append(d.sections, section{title: m[2], level: len(m[1]), headLine: i})
		}
	}

	for i := range d.sections {
		s := &d.sections[i]
		s.bodyStart = s.headLine + 1
		s.bodyEnd = len(d.lines)
		for j := i + 1; j < len(d.sections); j++ {
			if d.sections[j].level <= s.level {
				s.bodyEnd = d.sections[j].headLine
				break
			}
		}
	}
}

// String serializes the document.
func (d *Document) String() string {
	return strings.Join(d.lines, "\n")
}

// normalizeTitle reduces a heading or field name for tolerant matching.
func normalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(nonAlnumRe.ReplaceAllString(s, " "), " ")
}

// titleMatches reports whether a section title matches a requested name.
// Matching is tolerant: "Blockers" finds a section titled
// "Blockers/Concerns" and vice versa.
func titleMatches(title, name string) bool {
	nt, nn := normalizeTitle(title), normalizeTitle(name)
	if nt == "" || nn == "" {
		return nt == nn
	}
	return nt == nn || strings.Contains(nt, nn) || strings.Contains(nn, nt)
}

// findField returns the index of the first field with the given name.
func (d *Document) findField(name string) int {
	for i, f := range d.fields {
		if strings.EqualFold(f.name, name) {
			return i
		}
	}
	return -1
}

// findSection returns the index of the first section matching name.
func (d *Document) findSection(name string) int {
	for i, s := range d.sections {
		if titleMatches(s.title, name) {
			return i
		}
	}
	return -1
}

// Field returns the value of the named inline field.
func (d *Document) Field(name string) (string, bool) {
	if i := d.findField(name); i >= 0 {
		return d.fields[i].value, true
	}
	return "", false
}

// Section returns the body text of the named section.
func (d *Document) Section(name string) (string, bool) {
	i := d.findSection(name)
	if i < 0 {
		return "", false
	}
	s := d.sections[i]
	return strings.Join(d.lines[s.bodyStart:s.bodyEnd], "\n"), true
}

// Get looks the name up as an inline field first, then as a section body.
func (d *Document) Get(name string) (string, bool) {
	if v, ok := d.Field(name); ok {
		return v, true
	}
	return d.Section(name)
}

// Fields returns every inline field in document order.
func (d *Document) Fields() map[string]string {
	out := make(map[string]string, len(d.fields))
	for _, f := range d.fields {
		if _, ok := out[f.name]; !ok {
			out[f.name] = f.value
		}
	}
	return out
}

// SectionTitles returns every section heading in document order.
func (d *Document) SectionTitles() []string {
	out := make([]string, 0, len(d.sections))
	for _, s := range d.sections {
		out = append(out, s.title)
	}
	return out
}

// ReplaceField rewrites the value portion of the named field, leaving the
// rest of the line untouched. Returns ErrFieldNotFound when the document
// has no such field; the document is left unmodified in that case.
func (d *Document) ReplaceField(name, value string) error {
	i := d.findField(name)
	if i < 0 {
		return ErrFieldNotFound
	}
	f := d.fields[i]
	d.lines[f.line] = "**" + f.name + ":** " + value
	d.reindex()
	return nil
}

// Patch applies ReplaceField for each entry in order. Fields that exist
// are updated; missing ones are reported, not raised. The keys slice
// fixes application order.
func (d *Document) Patch(keys []string, values map[string]string) (updated, failed []string) {
	for _, name := range keys {
		if err := d.ReplaceField(name, values[name]); err != nil {
			failed = append(failed, name)
			continue
		}
		updated = append(updated, name)
	}
	return updated, failed
}

// AppendBullet adds a bullet line to the named running-list section. A
// placeholder-only body ("None", "None yet") is dropped first, and the
// section body always ends with exactly one trailing blank line.
func (d *Document) AppendBullet(name, text string) error {
	i := d.findSection(name)
	if i < 0 {
		return ErrSectionNotFound
	}
	s := d.sections[i]

	body := d.collectBody(s)
	if len(body) == 1 && placeholders[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(body[0]), "- "))] {
		body = nil
	}
	body = append(body, "- "+text)

	d.replaceBody(s, append(body, ""))
	return nil
}

// AppendTableRow adds a row to the markdown table under the named
// heading. The header and separator rows are kept; a placeholder-only or
// empty body means the row becomes the table's first data row.
func (d *Document) AppendTableRow(name, row string) error {
	i := d.findSection(name)
	if i < 0 {
		return ErrSectionNotFound
	}
	s := d.sections[i]

	var table []string
	for _, line := range d.collectBody(s) {
		if strings.HasPrefix(strings.TrimSpace(line), "|") {
			table = append(table, line)
		}
	}
	// A header needs its separator row; anything less is "no rows yet".
	if len(table) < 2 {
		table = []string{tableHeader(row), tableSeparator(row)}
	}
	table = append(table, row)

	d.replaceBody(s, append(table, ""))
	return nil
}

// collectBody returns the section body with surrounding blank lines
// stripped.
func (d *Document) collectBody(s section) []string {
	body := d.lines[s.bodyStart:s.bodyEnd]
	start, end := 0, len(body)
	for start < end && strings.TrimSpace(body[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(body[end-1]) == "" {
		end--
	}
	return append([]string(nil), body[start:end]...)
}

// replaceBody swaps the section body for newBody (with a leading blank
// line after the heading) and reindexes.
func (d *Document) replaceBody(s section, newBody []string) {
	out := make([]string, 0, len(d.lines))
	out = append(out, d.lines[:s.bodyStart]...)
	out = append(out, "")
	out = append(out, newBody...)
	out = append(out, d.lines[s.bodyEnd:]...)
	d.lines = out
	d.reindex()
}

// tableHeader synthesizes a header row with as many columns as row.
func tableHeader(row string) string {
	cols := tableWidth(row)
	cells := make([]string, cols)
	for i := range cells {
		cells[i] = " ... "
	}
	return "|" + strings.Join(cells, "|") + "|"
}

// tableSeparator synthesizes a separator row matching row's column count.
func tableSeparator(row string) string {
	cols := tableWidth(row)
	cells := make([]string, cols)
	for i := range cells {
		cells[i] = "-----"
	}
	return "|" + strings.Join(cells, "|") + "|"
}

// tableWidth counts the columns of a pipe-delimited row.
func tableWidth(row string) int {
	trimmed := strings.Trim(strings.TrimSpace(row), "|")
	return len(strings.Split(trimmed, "|"))
}
