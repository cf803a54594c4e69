package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "-version")
	if code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	if !strings.HasPrefix(out, "blockpad dev\n") {
		t.Errorf("output = %q", out)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad log level", []string{"-log-level", "loud"}},
		{"two files", []string{"a.txt", "b.txt"}},
		{"unknown flag", []string{"-nope"}},
		{"index without file", []string{"index"}},
		{"format with two files", []string{"format", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := runCLI(t, tt.args...); code != 2 {
				t.Errorf("exit = %d, want 2", code)
			}
		})
	}
}

func TestUsageListsCommands(t *testing.T) {
	_, _, errOut := runCLI(t, "-h")
	for _, name := range commandNames() {
		if !strings.Contains(errOut, name) {
			t.Errorf("usage does not mention %q", name)
		}
	}
}

func TestCommandNamesSorted(t *testing.T) {
	names := commandNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("commandNames() = %v, not sorted", names)
		}
	}
	if len(names) != len(commands) {
		t.Errorf("commandNames() has %d names, want %d", len(names), len(commands))
	}
}

func TestMissingFile(t *testing.T) {
	code, _, errOut := runCLI(t, "index", filepath.Join(t.TempDir(), "missing.txt"))
	if code != 1 || !strings.Contains(errOut, "Error:") {
		t.Errorf("exit = %d, stderr = %q", code, errOut)
	}
}

func TestIndexCommand(t *testing.T) {
	path := writeDoc(t, "∞∞∞text\nhello\n∞∞∞json-a\n{}")
	code, out, errOut := runCLI(t, "index", path)
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
	if !gjson.Valid(out) {
		t.Fatalf("output is not JSON: %q", out)
	}

	checks := map[string]string{
		"blocks.#":             "2",
		"blocks.0.language":    "text",
		"blocks.0.auto":        "false",
		"blocks.0.content.0":   "14",
		"blocks.0.content.1":   "20",
		"blocks.0.text":        "hello\n",
		"blocks.1.language":    "json",
		"blocks.1.auto":        "true",
		"blocks.1.delimiter.0": "20",
		"blocks.1.delimiter.1": "36",
		"markers.0.kind":       "first",
		"markers.1.kind":       "block",
		"bands.1.parity":       "1",
	}
	for path, want := range checks {
		if got := gjson.Get(out, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
}

func TestIndexImplicitFirstBlock(t *testing.T) {
	path := writeDoc(t, "just text")
	_, out, _ := runCLI(t, "index", path)
	if !gjson.Get(out, "blocks.0.implicit").Bool() {
		t.Errorf("implicit = false, want true:\n%s", out)
	}
	if gjson.Get(out, "blocks.0.delimiter").Exists() {
		t.Errorf("implicit block has a delimiter:\n%s", out)
	}
}

func TestHighlightCommand(t *testing.T) {
	path := writeDoc(t, "∞∞∞math\n1 + 2\n")
	code, out, _ := runCLI(t, "highlight", path)
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out, "# block 0 math") {
		t.Errorf("missing block header:\n%s", out)
	}
	if !strings.Contains(out, "14-15\tnumber\t\"1\"") {
		t.Errorf("missing number token:\n%s", out)
	}
}

func TestFoldsCommand(t *testing.T) {
	path := writeDoc(t, "∞∞∞text\nhello\nworld\n∞∞∞text\n")
	code, out, _ := runCLI(t, "folds", path)
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out, "14-25\tlines 2-3") {
		t.Errorf("folds output:\n%s", out)
	}
}

func TestFormatCommand(t *testing.T) {
	doc := "∞∞∞json\n{\"a\":1}\n∞∞∞text\n{\"b\":2}"
	path := writeDoc(t, doc)

	code, out, _ := runCLI(t, "format", path)
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	want := "∞∞∞json\n{\n    \"a\": 1\n}\n∞∞∞text\n{\"b\":2}"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
	data, _ := os.ReadFile(path)
	if string(data) != doc {
		t.Errorf("file changed without -w")
	}

	if code, _, _ := runCLI(t, "format", "-w", path); code != 0 {
		t.Fatalf("format -w exit = %d", code)
	}
	data, _ = os.ReadFile(path)
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestFormatInvalidJSON(t *testing.T) {
	path := writeDoc(t, "∞∞∞json\n{\"a\":\n")
	code, _, errOut := runCLI(t, "format", path)
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
	if !strings.Contains(errOut, "block 1") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestDetectCommand(t *testing.T) {
	doc := "∞∞∞text-a\n{\"name\": \"blockpad\", \"n\": 1}\n∞∞∞text\nplain"
	path := writeDoc(t, doc)

	code, out, errOut := runCLI(t, "detect", "-timeout", "10s", path)
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
	if !strings.Contains(out, "block 1\ttext -> json") {
		t.Errorf("output:\n%s", out)
	}
	if strings.Contains(out, "block 2") {
		t.Errorf("explicit block reported:\n%s", out)
	}

	if code, _, _ := runCLI(t, "detect", "-w", path); code != 0 {
		t.Fatalf("detect -w exit = %d", code)
	}
	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "∞∞∞json-a\n") {
		t.Errorf("file = %q", data)
	}
}

func TestViewCommand(t *testing.T) {
	path := writeDoc(t, "∞∞∞text\nhello\n∞∞∞json-a\n{}")
	code, out, errOut := runCLI(t, "view", "-width", "30", path)
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
	want := "∞ hello\n∞ json (auto)\n{}\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	if code, _, _ := runCLI(t, "view", "-width", "0", path); code != 2 {
		t.Errorf("width 0 exit = %d, want 2", code)
	}
}
