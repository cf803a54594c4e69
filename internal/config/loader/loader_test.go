package loader

import (
	"errors"
	"reflect"
	"testing"
)

func TestEnvToPath(t *testing.T) {
	l := NewEnvLoader(EnvPrefix)
	tests := []struct {
		env  string
		want string
	}{
		{"BLOCKPAD_EDITOR_TAB_WIDTH", "editor.tabWidth"},
		{"BLOCKPAD_DETECTION_MIN_CONTENT_LENGTH", "detection.minContentLength"},
		{"BLOCKPAD_DETECTION_BASE_URL", "detection.baseUrl"},
		{"BLOCKPAD_RENDER", "render"},
	}
	for _, tt := range tests {
		if got := l.envToPath(tt.env); got != tt.want {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"off", false},
		{"1", int64(1)},
		{"0.25", 0.25},
		{"5s", "5s"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestEnvLoaderMapping(t *testing.T) {
	l := NewEnvLoaderFrom(EnvPrefix, []string{
		"BLOCKPAD_LOG_LEVEL=debug",
		"BLOCKPAD_EDITOR_MAX_UNDO=50",
		"PATH=/bin",
	})
	got, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"logging": map[string]any{"level": "debug"},
		"editor":  map[string]any{"maxUndo": int64(50)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %#v, want %#v", got, want)
	}
}

func TestDeepMergeAndFlatten(t *testing.T) {
	dst := map[string]any{"a": map[string]any{"x": 1, "y": 2}, "b": 1}
	src := map[string]any{"a": map[string]any{"y": 3}, "c": "z"}
	got := Flatten(DeepMerge(dst, src))
	want := map[string]any{"a.x": 1, "a.y": 3, "b": 1, "c": "z"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten(DeepMerge) = %v, want %v", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := ParseTOML("x.toml", []byte("a = ")); err == nil {
		t.Error("ParseTOML accepted invalid input")
	} else if perr := (*ParseError)(nil); !errors.As(err, &perr) || perr.Path != "x.toml" {
		t.Errorf("ParseTOML error = %v", err)
	}
	if _, err := ParseYAML("x.yaml", []byte("a: [1, 2")); err == nil {
		t.Error("ParseYAML accepted invalid input")
	}
}

func TestForPath(t *testing.T) {
	for _, p := range []string{"a.toml", "a.YAML", "a.yml"} {
		if _, err := ForPath(p); err != nil {
			t.Errorf("ForPath(%q) = %v", p, err)
		}
	}
	if _, err := ForPath("a.ini"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ForPath(a.ini) = %v, want ErrUnsupportedFormat", err)
	}
}
