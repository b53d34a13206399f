package tmpl

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"base.html":   {Data: []byte(`{{ define "title" }}Tasks{{ end }}`)},
		"hello.html":  {Data: []byte(`<p>hello {{ .Name }}</p>`)},
		"shout.html":  {Data: []byte(`{{ shout .Name }}`)},
		"list.html":   {Data: []byte(`{{ join .Items ", " | lower }}`)},
		"broken.html": {Data: []byte(`{{ .Missing }}`)},
	}
}

func TestRender(t *testing.T) {
	r, err := New(Config{
		FS:    testFS(),
		Funcs: map[string]any{"shout": strings.ToUpper},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		tmpl    string
		data    any
		want    string
		wantErr bool
	}{
		{
			name: "simple substitution",
			tmpl: "hello.html",
			data: map[string]string{"Name": "world"},
			want: "<p>hello world</p>",
		},
		{
			name: "html escaping",
			tmpl: "hello.html",
			data: map[string]string{"Name": "<b>x</b>"},
			want: "<p>hello &lt;b&gt;x&lt;/b&gt;</p>",
		},
		{
			name: "custom function",
			tmpl: "shout.html",
			data: struct{ Name string }{Name: "hi"},
			want: "HI",
		},
		{
			name: "builtin functions",
			tmpl: "list.html",
			data: map[string][]string{"Items": {"A", "B"}},
			want: "a, b",
		},
		{
			name: "defined template",
			tmpl: "title",
			want: "Tasks",
		},
		{
			name:    "missing key errors",
			tmpl:    "broken.html",
			data:    map[string]string{"Name": "test"},
			wantErr: true,
		},
		{
			name:    "unknown template",
			tmpl:    "nope.html",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := r.Render(&buf, tt.tmpl, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, buf.String(), "no partial output on error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestNew_Errors(t *testing.T) {
	t.Run("nil fs", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err)
	})

	t.Run("invalid syntax", func(t *testing.T) {
		_, err := New(Config{FS: fstest.MapFS{"bad.html": {Data: []byte(`{{ .Name }`)}}})
		require.Error(t, err)
	})

	t.Run("unknown function", func(t *testing.T) {
		_, err := New(Config{FS: fstest.MapFS{"bad.html": {Data: []byte(`{{ nope }}`)}}})
		require.Error(t, err)
	})

	t.Run("no matching files", func(t *testing.T) {
		_, err := New(Config{FS: fstest.MapFS{"a.txt": {Data: []byte("x")}}})
		require.Error(t, err)
	})
}

func TestHas(t *testing.T) {
	r, err := New(Config{FS: testFS(), Funcs: map[string]any{"shout": strings.ToUpper}})
	require.NoError(t, err)

	assert.True(t, r.Has("hello.html"))
	assert.False(t, r.Has("missing.html"))
}
