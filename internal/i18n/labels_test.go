package i18n

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const sample = `
# device states
device.state.active = Running
device.state.retired=Retired
  device.state.maintenance =  Under repair  
not a label line
msg.added = Added {asset_no} as #{id}
empty.value =
url = http://host/?a=b
`

func mustParse(t *testing.T, s string) *Labels {
	t.Helper()
	l, err := Parse(strings.NewReader(s))
	require.NoError(t, err)
	return l
}

func TestParse(t *testing.T) {
	l := mustParse(t, sample)

	assert.Equal(t, 6, l.Len())
	assert.Equal(t, "Running", l.T("device.state.active"))
	assert.Equal(t, "Under repair", l.T("device.state.maintenance"))
	assert.Equal(t, "", l.T("empty.value"))
	assert.Equal(t, "http://host/?a=b", l.T("url"), "split on the first '=' only")
	assert.Equal(t, "not a label line", l.T("not a label line"))
}

func TestParseStripsByteOrderMark(t *testing.T) {
	l := mustParse(t, "\uFEFFtitle = Inventory\n")
	assert.Equal(t, "Inventory", l.T("title"))
}

func TestT(t *testing.T) {
	l := mustParse(t, sample)

	tests := []struct {
		name string
		key  string
		kv   []any
		want string
	}{
		{"placeholders", "msg.added", []any{"asset_no", "PC-001", "id", 7}, "Added PC-001 as #7"},
		{"missing placeholder stays", "msg.added", []any{"id", 7}, "Added {asset_no} as #7"},
		{"unknown key falls back", "msg.unknown", nil, "msg.unknown"},
		{"unknown key still formats", "{n} items", []any{"n", 3}, "3 items"},
		{"odd argument ignored", "msg.added", []any{"asset_no"}, "Added {asset_no} as #{id}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.T(tt.key, tt.kv...))
		})
	}
}

func TestStateDisplay(t *testing.T) {
	l := mustParse(t, sample)

	assert.Equal(t, "Running", l.StateDisplay("device.state", "active"))
	assert.Equal(t, "standby", l.StateDisplay("device.state", "standby"))
	assert.Equal(t, []string{"Running", "standby", "Retired"},
		l.StatesDisplay("device.state", []string{"active", "standby", "retired"}))
}

func TestStateToPhysical(t *testing.T) {
	l := mustParse(t, sample)

	tests := []struct {
		display string
		want    string
	}{
		{"Running", "active"},
		{"Retired", "retired"},
		{"Under repair", "maintenance"},
		{"retired", "retired"},
		{"active", "active"},
		{"Nonsense", "active"},
		{"", "active"},
	}
	for _, tt := range tests {
		t.Run(tt.display, func(t *testing.T) {
			assert.Equal(t, tt.want, l.StateToPhysical("device.state", tt.display, "active"))
		})
	}

	for _, v := range []string{"active", "retired", "maintenance"} {
		assert.Equal(t, v, l.StateToPhysical("device.state", l.StateDisplay("device.state", v), "active"), "round trip %s", v)
	}
}

func TestZeroLabels(t *testing.T) {
	var l *Labels
	assert.Equal(t, "x.y", l.T("x.y"))
	assert.Equal(t, "active", l.StateDisplay("device.state", "active"))
	assert.Equal(t, "active", l.StateToPhysical("device.state", "whatever", "active"))
	assert.Zero(t, l.Len())
}

func TestLoad(t *testing.T) {
	t.Run("missing file is empty", func(t *testing.T) {
		l, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
		require.NoError(t, err)
		assert.Zero(t, l.Len())
		assert.Equal(t, "device.state.active", l.T("device.state.active"))
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "labels.txt")
		require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
		l, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "Running", l.T("device.state.active"))
	})
}

func TestEmbedded(t *testing.T) {
	tests := []struct {
		lang string
		want language.Tag
	}{
		{"en", language.English},
		{"ja", language.Japanese},
		{"ja-JP", language.Japanese},
		{"ja_JP.UTF-8", language.Japanese},
		{"en_GB", language.English},
		{"fr", language.English},
		{"", language.English},
		{"!!", language.English},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			l, err := Embedded(tt.lang)
			require.NoError(t, err)
			base, _ := l.Language().Base()
			wantBase, _ := tt.want.Base()
			assert.Equal(t, wantBase, base)
			assert.NotZero(t, l.Len())
		})
	}
}

func TestBundledSetsShareKeys(t *testing.T) {
	en, err := Embedded("en")
	require.NoError(t, err)
	ja, err := Embedded("ja")
	require.NoError(t, err)

	assert.Equal(t, en.Keys(), ja.Keys())
	assert.NotEqual(t, en.T("device.state.active"), ja.T("device.state.active"))
}

func TestNewAppliesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.txt")
	require.NoError(t, os.WriteFile(path, []byte("device.state.active = In service\n"), 0o600))

	l, err := New("en", path)
	require.NoError(t, err)
	assert.Equal(t, "In service", l.T("device.state.active"))
	assert.Equal(t, "active", l.StateToPhysical("device.state", "In service", "retired"))

	en, err := Embedded("en")
	require.NoError(t, err)
	assert.Equal(t, en.T("license.state.expired"), l.T("license.state.expired"))
}
