package tmpl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local).UnixMilli()

	tests := []struct {
		name    string
		tmpl    string
		data    any
		want    string
		wantErr bool
	}{
		{
			name: "simple substitution",
			tmpl: "hello {{ .Name }}",
			data: map[string]string{"Name": "world"},
			want: "hello world",
		},
		{
			name: "struct data",
			tmpl: "{{ .Key }}: {{ .Title }}",
			data: struct {
				Key   string
				Title string
			}{Key: "build", Title: "Done"},
			want: "build: Done",
		},
		{
			name: "time layout",
			tmpl: `{{ time "2006-01-02 15:04" .Time }}`,
			data: map[string]int64{"Time": ts},
			want: "2026-03-04 05:06",
		},
		{
			name: "rfc3339",
			tmpl: `{{ rfc3339 .Time }}`,
			data: map[string]int64{"Time": ts},
			want: time.UnixMilli(ts).Format(time.RFC3339),
		},
		{
			name: "trunc",
			tmpl: `{{ trunc 5 .Body }}`,
			data: map[string]string{"Body": "hello world"},
			want: "hell…",
		},
		{
			name: "trunc shorter than limit",
			tmpl: `{{ trunc 50 .Body }}`,
			data: map[string]string{"Body": "hello"},
			want: "hello",
		},
		{
			name: "oneline",
			tmpl: `{{ oneline .Body }}`,
			data: map[string]string{"Body": "line one\n  line two\n"},
			want: "line one line two",
		},
		{
			name: "join and upper",
			tmpl: `{{ upper (join .Args ",") }}`,
			data: map[string][]string{"Args": {"a", "b"}},
			want: "A,B",
		},
		{
			name:    "missing key",
			tmpl:    "{{ .Missing }}",
			data:    map[string]string{"Name": "x"},
			wantErr: true,
		},
		{
			name:    "parse error",
			tmpl:    "{{ .Name",
			data:    map[string]string{"Name": "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "…", truncate(1, "abc"))
	assert.Equal(t, "abc", truncate(0, "abc"))
	assert.Equal(t, "héll…", truncate(5, "héllo wörld"))
}
