// Package frontmatter implements the codec for the structured header block
// embedded at the top of planning documents.
//
// The supported shape is a deliberate subset of what a general-purpose YAML
// parser would accept: string scalars, flat lists of strings, and one-level
// nested mappings whose values are scalars or flat lists. Key order is
// preserved. Anything outside that subset round-trips on a best-effort basis
// only. The codec never errors on malformed input; a document without a
// well-formed block parses to an empty tree.
package frontmatter

import (
	"regexp"
	"strings"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	// KindScalar is a plain string value.
	KindScalar Kind = iota
	// KindList is an ordered list of string scalars.
	KindList
	// KindMap is a one-level nested mapping.
	KindMap
)

// Value is one node of a frontmatter tree.
type Value struct {
	Kind   Kind
	Scalar string
	List   []string
	Map    *Map
}

// String returns a scalar Value.
func String(s string) *Value {
	return &Value{Kind: KindScalar, Scalar: s}
}

// Strings returns a list Value.
func Strings(items []string) *Value {
	return &Value{Kind: KindList, List: items}
}

// Nested returns a mapping Value.
func Nested(m *Map) *Value {
	return &Value{Kind: KindMap, Map: m}
}

// Map is an insertion-ordered string-keyed mapping.
type Map struct {
	keys []string
	vals map[string]*Value
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{vals: make(map[string]*Value)}
}

// Set stores v under key, appending the key on first insert.
func (m *Map) Set(key string, v *Value) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// SetScalar stores a string scalar under key.
func (m *Map) SetScalar(key, value string) {
	m.Set(key, String(value))
}

// SetList stores a flat list under key.
func (m *Map) SetList(key string, items []string) {
	m.Set(key, Strings(items))
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (*Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// GetScalar returns the scalar stored under key, or "" when the key is
// absent or holds a non-scalar.
func (m *Map) GetScalar(key string) string {
	if v, ok := m.vals[key]; ok && v.Kind == KindScalar {
		return v.Scalar
	}
	return ""
}

// GetList returns the list stored under key. A scalar is returned as a
// single-element list so callers can accept either declaration style.
func (m *Map) GetList(key string) []string {
	v, ok := m.vals[key]
	if !ok {
		return nil
	}
	switch v.Kind {
	case KindList:
		return v.List
	case KindScalar:
		if v.Scalar == "" {
			return nil
		}
		return []string{v.Scalar}
	}
	return nil
}

// GetMap returns the nested mapping stored under key, or nil.
func (m *Map) GetMap(key string) *Map {
	if v, ok := m.vals[key]; ok && v.Kind == KindMap {
		return v.Map
	}
	return nil
}

// Delete removes key from the map.
func (m *Map) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m *Map) Len() int {
	return len(m.keys)
}

// Merge shallow-merges other into m: existing keys are overwritten, new
// keys are appended in other's order.
func (m *Map) Merge(other *Map) {
	for _, k := range other.keys {
		m.Set(k, other.vals[k])
	}
}

// blockRe matches a well-formed frontmatter block at the start of a
// document, including the trailing newline after the closing fence. The
// closing fence must be a complete `---` line, so a longer dash run
// (`----`) never terminates the block.
var blockRe = regexp.MustCompile(`(?s)\A---\r?\n.*?\r?\n---(?:\r?\n|\z)`)

var (
	keyLineRe  = regexp.MustCompile(`^(\s*)([A-Za-z0-9_.-]+):\s*(.*)$`)
	listItemRe = regexp.MustCompile(`^(\s*)-\s+(.*)$`)
)

// frame is one level of the container stack during parsing.
type frame struct {
	val    *Value
	indent int
}

// Extract parses the frontmatter block of content into a tree. Documents
// without the exact `---` framing yield an empty tree, never an error.
func Extract(content string) *Map {
	root := NewMap()
	block, ok := blockBody(content)
	if !ok {
		return root
	}

	rootVal := Nested(root)
	stack := []frame{{val: rootVal, indent: -1}}

	for _, rawLine := range strings.Split(block, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := listItemRe.FindStringSubmatch(line); m != nil {
			appendListItem(stack[len(stack)-1].val, stripQuotes(strings.TrimSpace(m[2])))
			continue
		}

		m := keyLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		indent := len(m[1])
		key := m[2]
		val := strings.TrimSpace(m[3])

		// Close containers at or deeper than this indentation.
		for len(stack) > 1 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		top := stack[len(stack)-1].val
		if top.Kind != KindMap {
			continue
		}

		switch {
		case val == "":
			// Undetermined container: a following list item promotes
			// it to a list, a following key line keeps it a mapping.
			child := Nested(NewMap())
			top.Map.Set(key, child)
			stack = append(stack, frame{val: child, indent: indent})
		case val == "[":
			child := Strings(nil)
			top.Map.Set(key, child)
			stack = append(stack, frame{val: child, indent: indent})
		case strings.HasPrefix(val, "[") && strings.HasSuffix(val, "]"):
			top.Map.Set(key, Strings(splitInlineList(val)))
		default:
			top.Map.SetScalar(key, stripQuotes(val))
		}
	}

	return root
}

// appendListItem appends item to container, promoting an empty mapping
// container to a list first.
func appendListItem(container *Value, item string) {
	if container.Kind == KindMap && container.Map != nil && container.Map.Len() == 0 {
		container.Kind = KindList
		container.Map = nil
	}
	if container.Kind == KindList {
		container.List = append(container.List, item)
	}
}

// blockBody returns the content between the frontmatter fences.
func blockBody(content string) (string, bool) {
	var rest string
	switch {
	case strings.HasPrefix(content, "---\n"):
		rest = content[4:]
	case strings.HasPrefix(content, "---\r\n"):
		rest = content[5:]
	default:
		return "", false
	}
	for _, sep := range []string{"\n---\n", "\n---\r\n"} {
		if idx := strings.Index(rest, sep); idx >= 0 {
			return rest[:idx], true
		}
	}
	// Closing fence at end of document without trailing newline.
	if strings.HasSuffix(rest, "\n---") {
		return rest[:len(rest)-4], true
	}
	return "", false
}

// splitInlineList splits a bracketed inline list into trimmed, unquoted
// elements.
func splitInlineList(val string) []string {
	inner := strings.TrimSpace(val[1 : len(val)-1])
	if inner == "" {
		return nil
	}
	parts := strings.Split(inner, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		items = append(items, stripQuotes(strings.TrimSpace(p)))
	}
	return items
}

// stripQuotes removes one pair of matching surrounding quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

const (
	inlineListMaxItems = 3
	inlineListMaxJoin  = 60
)

// Reconstruct serializes a tree back to frontmatter text (without fences),
// preserving key insertion order.
func Reconstruct(m *Map) string {
	var b strings.Builder
	writeMap(&b, m, "", true)
	return b.String()
}

// writeMap emits one mapping level. top controls the top-level-only
// quoting rule for scalars that open with a bracket or brace.
func writeMap(b *strings.Builder, m *Map, indent string, top bool) {
	for _, key := range m.keys {
		v := m.vals[key]
		switch v.Kind {
		case KindScalar:
			b.WriteString(indent + key + ": " + quoteScalar(v.Scalar, top) + "\n")
		case KindList:
			writeList(b, key, v.List, indent)
		case KindMap:
			b.WriteString(indent + key + ":\n")
			writeMap(b, v.Map, indent+"  ", false)
		}
	}
}

// writeList emits a list inline when it is short and simple, as a block
// otherwise. Elements that would not survive the inline split fall back
// to block form.
func writeList(b *strings.Builder, key string, items []string, indent string) {
	if inlineable(items) {
		b.WriteString(indent + key + ": [" + strings.Join(items, ", ") + "]\n")
		return
	}
	b.WriteString(indent + key + ":\n")
	for _, item := range items {
		b.WriteString(indent + "  - " + quoteListItem(item) + "\n")
	}
}

// quoteListItem wraps an element whose unquoted emission a re-parse
// would trim or unquote.
func quoteListItem(item string) string {
	if item != strings.TrimSpace(item) || stripQuotes(item) != item {
		return `"` + item + `"`
	}
	return item
}

// inlineable reports whether the list can round-trip through the inline
// `[a, b]` form: short, and every element survives the comma split and
// unquote of a re-parse.
func inlineable(items []string) bool {
	if len(items) > inlineListMaxItems || len(strings.Join(items, ", ")) >= inlineListMaxJoin {
		return false
	}
	for _, item := range items {
		if item == "" || strings.Contains(item, ",") {
			return false
		}
		if item != strings.TrimSpace(item) || stripQuotes(item) != item {
			return false
		}
	}
	return true
}

// quoteScalar wraps s in double quotes when unquoted emission would not
// survive a re-parse.
func quoteScalar(s string, top bool) string {
	if strings.ContainsAny(s, ":#") {
		return `"` + s + `"`
	}
	if top && (strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")) {
		return `"` + s + `"`
	}
	return s
}

// Splice replaces the frontmatter block of content with the reconstruction
// of m, or prepends a new block when content has none.
func Splice(content string, m *Map) string {
	block := "---\n" + Reconstruct(m) + "---\n"
	if blockRe.MatchString(content) {
		return blockRe.ReplaceAllString(content, block)
	}
	return block + content
}

// Body returns content with any leading frontmatter block removed and
// leading whitespace trimmed.
func Body(content string) string {
	if !blockRe.MatchString(content) {
		return content
	}
	return strings.TrimLeft(blockRe.ReplaceAllString(content, ""), " \t\r\n")
}

// Equal reports value equality of two trees: same keys in any order is NOT
// enough — key sets must match, but formatting details do not participate.
func Equal(a, b *Map) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, k := range a.keys {
		av := a.vals[k]
		bv, ok := b.vals[k]
		if !ok || !valueEqual(av, bv) {
			return false
		}
	}
	return true
}

func valueEqual(a, b *Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindScalar:
		return a.Scalar == b.Scalar
	case KindList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if a.List[i] != b.List[i] {
				return false
			}
		}
		return true
	case KindMap:
		return Equal(a.Map, b.Map)
	}
	return false
}
