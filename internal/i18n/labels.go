// Package i18n maps label keys to display text.
//
// Label files are flat "key = value" lines. Blank lines and lines starting
// with '#' are ignored, as are lines without '='. Values may carry {name}
// placeholders that T fills from its arguments.
//
// Labels are plain values: callers build one at startup and pass it to
// whatever renders text. There is no package-level state.
package i18n

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed labels/*.txt
var bundled embed.FS

// Bundled label sets, in matcher preference order. The first is the default.
var (
	supported = []language.Tag{language.English, language.Japanese}
	matcher   = language.NewMatcher(supported)
)

// Labels is an immutable key to text mapping. The zero value is empty and
// every lookup falls back to its key.
type Labels struct {
	text map[string]string
	lang language.Tag
}

// Parse reads a label file.
func Parse(r io.Reader) (*Labels, error) {
	l := &Labels{text: make(map[string]string)}
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		l.text[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading labels: %w", err)
	}
	return l, nil
}

// Load reads a label file from disk. A missing file yields empty labels.
func Load(path string) (*Labels, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from trusted config
	if errors.Is(err, fs.ErrNotExist) {
		return &Labels{text: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening labels: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Embedded returns the bundled label set that best matches lang, such as
// "ja", "ja-JP" or "ja_JP.UTF-8". Unknown or empty languages get English.
func Embedded(lang string) (*Labels, error) {
	tag := supported[0]
	if t, err := language.Parse(normaliseLocale(lang)); err == nil {
		_, idx, _ := matcher.Match(t)
		tag = supported[idx]
	}

	base, _ := tag.Base()
	f, err := bundled.Open("labels/" + base.String() + ".txt")
	if err != nil {
		return nil, fmt.Errorf("opening bundled labels %s: %w", tag, err)
	}
	defer f.Close()

	l, err := Parse(f)
	if err != nil {
		return nil, err
	}
	l.lang = tag
	return l, nil
}

// New builds the labels a front-end uses: the bundled set for lang, with
// entries from the file at overridePath (if any) taking precedence.
func New(lang, overridePath string) (*Labels, error) {
	l, err := Embedded(lang)
	if err != nil {
		return nil, err
	}
	if overridePath == "" {
		return l, nil
	}
	override, err := Load(overridePath)
	if err != nil {
		return nil, err
	}
	return l.Merge(override), nil
}

// Merge returns a copy of l with every entry of other applied on top.
func (l *Labels) Merge(other *Labels) *Labels {
	out := &Labels{text: make(map[string]string, l.Len()+other.Len())}
	if l != nil {
		out.lang = l.lang
		for k, v := range l.text {
			out.text[k] = v
		}
	}
	if other != nil {
		for k, v := range other.text {
			out.text[k] = v
		}
	}
	return out
}

// Language is the bundled language the labels were built from.
func (l *Labels) Language() language.Tag {
	if l == nil {
		return language.Und
	}
	return l.lang
}

// Len is the number of entries.
func (l *Labels) Len() int {
	if l == nil {
		return 0
	}
	return len(l.text)
}

// Keys returns all keys in sorted order.
func (l *Labels) Keys() []string {
	if l == nil {
		return nil
	}
	keys := make([]string, 0, len(l.text))
	for k := range l.text {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (l *Labels) lookup(key string) (string, bool) {
	if l == nil {
		return "", false
	}
	v, ok := l.text[key]
	return v, ok
}

// T returns the text for key, or the key itself when it has no entry.
// kv holds name/value pairs substituted into {name} placeholders.
//
//	labels.T("msg.device_added", "asset_no", "PC-001", "id", 7)
func (l *Labels) T(key string, kv ...any) string {
	text, ok := l.lookup(key)
	if !ok {
		text = key
	}
	if len(kv) < 2 {
		return text
	}
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+fmt.Sprint(kv[i])+"}", fmt.Sprint(kv[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// StateDisplay returns the display text of a stored state value, looked up as
// "<prefix>.<value>". Unlabelled values are shown as stored.
func (l *Labels) StateDisplay(prefix, value string) string {
	if text, ok := l.lookup(prefix + "." + value); ok {
		return text
	}
	return value
}

// StatesDisplay maps StateDisplay over values.
func (l *Labels) StatesDisplay(prefix string, values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = l.StateDisplay(prefix, v)
	}
	return out
}

// StateToPhysical reverses StateDisplay. Both display text and stored values
// are accepted; anything unrecognised maps to fallback.
func (l *Labels) StateToPhysical(prefix, display, fallback string) string {
	if display == fallback || display == l.StateDisplay(prefix, fallback) {
		return fallback
	}
	if l == nil {
		return fallback
	}
	p := prefix + "."
	// Sorted so that duplicate display texts resolve the same way every time.
	for _, key := range l.Keys() {
		physical, ok := strings.CutPrefix(key, p)
		if !ok {
			continue
		}
		if l.text[key] == display || physical == display {
			return physical
		}
	}
	return fallback
}

func normaliseLocale(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	return strings.ReplaceAll(s, "_", "-")
}
