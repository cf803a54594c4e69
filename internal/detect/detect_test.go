package detect

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/blockpad/internal/lang"
)

func TestPrecheck(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ok      bool
	}{
		{"object", `{"a":1}`, true},
		{"array with whitespace", "\n  [1, 2, {\"b\": null}]\n", true},
		{"incomplete object", `{"a":`, false},
		{"scalar", `42`, false},
		{"string", `"hello"`, false},
		{"prose", "hello world", false},
		{"empty", "", false},
		{"braces in code", "{ x = 1 }", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := Precheck(tt.content)
			if ok != tt.ok {
				t.Fatalf("Precheck(%q) ok = %v, want %v", tt.content, ok, tt.ok)
			}
			if ok && (res.Language != lang.JSON || res.Relevance != MaxRelevance || res.Illegal) {
				t.Errorf("Precheck(%q) = %v, want json with max relevance", tt.content, res)
			}
		})
	}
}

func TestPolicy(t *testing.T) {
	p := DefaultPolicy()

	if !p.Eligible(`{"a":1}`) {
		t.Error("short JSON should be eligible")
	}
	if p.Eligible("  hi  ") {
		t.Error("short prose should not be eligible")
	}
	if !p.Eligible("def main():\n    pass") {
		t.Error("long content should be eligible")
	}

	tests := []struct {
		name string
		resp Response
		want bool
	}{
		{"confident", Response{Result: Result{Language: lang.Python, Relevance: 0.9}}, true},
		{"at threshold", Response{Result: Result{Language: lang.Python, Relevance: p.MinRelevance}}, true},
		{"weak", Response{Result: Result{Language: lang.Python, Relevance: 0.1}}, false},
		{"illegal", Response{Result: Result{Language: lang.Python, Relevance: 1, Illegal: true}}, false},
		{"error", Response{Err: errors.New("boom")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Accept(tt.resp); got != tt.want {
				t.Errorf("Accept() = %v, want %v", got, tt.want)
			}
		})
	}
}

func startDetector(t *testing.T, c Classifier, opts ...Option) *Detector {
	t.Helper()
	d := New(c, opts...)
	if err := d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = d.Stop(ctx)
	})
	return d
}

func receive(t *testing.T, d *Detector) Response {
	t.Helper()
	select {
	case resp := <-d.Results():
		return resp
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a response")
		return Response{}
	}
}

func TestDetectorJSONShortCircuit(t *testing.T) {
	var calls atomic.Int32
	c := ClassifierFunc(func(ctx context.Context, content string) (Result, error) {
		calls.Add(1)
		return Result{Language: lang.Python, Relevance: 1}, nil
	})
	d := startDetector(t, c)

	req := Request{ID: 7, Session: "s", Generation: 3, Block: 2, Content: `{"a":1}`}
	if err := d.Submit(req); err != nil {
		t.Fatal(err)
	}
	resp := receive(t, d)

	if resp.ID != 7 || resp.Session != "s" || resp.Generation != 3 || resp.Block != 2 {
		t.Errorf("response identifiers = %+v, want echo of request", resp)
	}
	if resp.Language != lang.JSON || resp.Relevance != MaxRelevance {
		t.Errorf("response = %v, want json with max relevance", resp.Result)
	}
	if calls.Load() != 0 {
		t.Errorf("classifier called %d times, want 0", calls.Load())
	}
	if st := d.Stats(); st.Prechecked != 1 || st.Processed != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestDetectorDelegates(t *testing.T) {
	c := ClassifierFunc(func(ctx context.Context, content string) (Result, error) {
		if strings.Contains(content, "def ") {
			return Result{Language: lang.Python, Relevance: 0.8}, nil
		}
		return Result{}, errors.New("no idea")
	})
	d := startDetector(t, c)

	_ = d.Submit(Request{ID: 1, Content: "def f():\n    return 1"})
	resp := receive(t, d)
	if resp.Err != nil || resp.Language != lang.Python {
		t.Errorf("response = %+v, want python", resp)
	}

	_ = d.Submit(Request{ID: 2, Content: "???"})
	resp = receive(t, d)
	if resp.Err == nil || resp.ID != 2 {
		t.Errorf("response = %+v, want error for request 2", resp)
	}
}

func TestDetectorRecoversPanics(t *testing.T) {
	c := ClassifierFunc(func(ctx context.Context, content string) (Result, error) {
		panic("classifier exploded")
	})
	d := startDetector(t, c)

	_ = d.Submit(Request{ID: 9, Content: "some content here"})
	resp := receive(t, d)
	if resp.Err == nil || !strings.Contains(resp.Err.Error(), "exploded") {
		t.Errorf("Err = %v, want panic error", resp.Err)
	}
	if d.Stats().Panicked != 1 {
		t.Errorf("Panicked = %d, want 1", d.Stats().Panicked)
	}
}

func TestDetectorQueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	c := ClassifierFunc(func(ctx context.Context, content string) (Result, error) {
		started <- struct{}{}
		<-release
		return Result{Language: lang.Plain}, nil
	})
	d := startDetector(t, c, WithWorkers(1), WithQueueSize(1), WithTimeout(0))
	defer close(release)

	if err := d.Submit(Request{ID: 1, Content: "first request"}); err != nil {
		t.Fatal(err)
	}
	<-started
	if err := d.Submit(Request{ID: 2, Content: "second request"}); err != nil {
		t.Fatal(err)
	}
	if err := d.Submit(Request{ID: 3, Content: "third request"}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Submit() error = %v, want ErrQueueFull", err)
	}
	if d.Stats().Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", d.Stats().Dropped)
	}
}

func TestDetectorLifecycle(t *testing.T) {
	d := New(nil)
	if err := d.Submit(Request{}); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Submit() before Start = %v, want ErrNotRunning", err)
	}
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	if err := d.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() = %v, want ErrAlreadyRunning", err)
	}
	results := d.Results()
	if err := d.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-results; ok {
		t.Error("results channel should be closed after Stop")
	}
	if err := d.Stop(context.Background()); !errors.Is(err, ErrNotRunning) {
		t.Errorf("second Stop() = %v, want ErrNotRunning", err)
	}
}

func TestDetectTimeout(t *testing.T) {
	c := ClassifierFunc(func(ctx context.Context, content string) (Result, error) {
		<-ctx.Done()
		return Result{}, ctx.Err()
	})
	d := New(c, WithTimeout(10*time.Millisecond))
	_, err := d.Detect(context.Background(), "slow content")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Detect() error = %v, want deadline exceeded", err)
	}
}

func TestLuaClassifierDefaultScript(t *testing.T) {
	c, err := NewLuaClassifier(DefaultScript, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	tests := []struct {
		name    string
		content string
		want    lang.Language
	}{
		{"python", "import os\ndef main():\n    print(os.name)\n", lang.Python},
		{"go", "package main\n\nfunc main() {\n\tx := 1\n}\n", lang.Go},
		{"sql", "SELECT id\nFROM users;\n", lang.SQL},
		{"prose", "just some words\nand more words", lang.Plain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Classify(context.Background(), tt.content)
			if err != nil {
				t.Fatal(err)
			}
			if res.Language != tt.want {
				t.Errorf("Classify() = %v, want %v", res, tt.want)
			}
			if res.Relevance < 0 || res.Relevance > MaxRelevance {
				t.Errorf("relevance %v out of range", res.Relevance)
			}
		})
	}
}

func TestLuaClassifierScripts(t *testing.T) {
	t.Run("custom answer", func(t *testing.T) {
		c, err := NewLuaClassifier(`function classify(s) return "rust-a", 2, false end`, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer c.Close()
		res, err := c.Classify(context.Background(), "fn main() {}")
		if err != nil {
			t.Fatal(err)
		}
		if res.Language != lang.Rust || res.Relevance != MaxRelevance {
			t.Errorf("Classify() = %v, want rust clamped to max relevance", res)
		}
	})

	t.Run("missing classify", func(t *testing.T) {
		if _, err := NewLuaClassifier(`x = 1`, nil); !errors.Is(err, ErrNoClassifyFunc) {
			t.Errorf("error = %v, want ErrNoClassifyFunc", err)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		if _, err := NewLuaClassifier(`function classify(`, nil); err == nil {
			t.Error("expected load error")
		}
	})

	t.Run("unknown tag", func(t *testing.T) {
		c, err := NewLuaClassifier(`function classify(s) return "cobol", 1, false end`, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer c.Close()
		if _, err := c.Classify(context.Background(), "x"); !errors.Is(err, ErrNoAnswer) {
			t.Errorf("error = %v, want ErrNoAnswer", err)
		}
	})

	t.Run("sandboxed", func(t *testing.T) {
		c, err := NewLuaClassifier(`function classify(s) return dofile("/etc/passwd") end`, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer c.Close()
		if _, err := c.Classify(context.Background(), "x"); err == nil {
			t.Error("dofile should not be callable")
		}
		if _, err := NewLuaClassifier(`os.exit(1)`, nil); err == nil {
			t.Error("os library should not be loaded")
		}
	})

	t.Run("closed", func(t *testing.T) {
		c, err := NewLuaClassifier(DefaultScript, nil)
		if err != nil {
			t.Fatal(err)
		}
		c.Close()
		if _, err := c.Classify(context.Background(), "x"); !errors.Is(err, ErrStateClosed) {
			t.Errorf("error = %v, want ErrStateClosed", err)
		}
	})
}

func TestChromaClassifier(t *testing.T) {
	c := NewChromaClassifier()

	langs := c.Languages()
	if len(langs) < 20 {
		t.Fatalf("Languages() = %d entries, want most of the registry", len(langs))
	}
	for _, l := range langs {
		if l == lang.Plain || l == lang.Math {
			t.Errorf("Languages() includes %v, which has no lexer", l)
		}
	}

	res, err := c.Classify(context.Background(), "#!/bin/bash\necho hello\n")
	if err != nil {
		t.Fatal(err)
	}
	if res.Language != lang.Shell || res.Relevance != MaxRelevance {
		t.Errorf("Classify(shebang) = %v, want shell with max relevance", res)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Classify(ctx, "anything"); !errors.Is(err, context.Canceled) {
		t.Errorf("Classify(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    Result
		wantErr bool
	}{
		{"bare", `{"language":"python","relevance":0.7}`, Result{Language: lang.Python, Relevance: 0.7}, false},
		{"fenced", "```json\n{\"language\": \"Go\", \"relevance\": 0.9}\n```", Result{Language: lang.Go, Relevance: 0.9}, false},
		{"no relevance", `{"language":"yaml"}`, Result{Language: lang.YAML, Relevance: MaxRelevance}, false},
		{"illegal", `{"language":"text","relevance":0,"illegal":true}`, Result{Language: lang.Plain, Illegal: true}, false},
		{"unknown", `{"language":"cobol"}`, Result{}, true},
		{"no json", "it is python", Result{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnswer(tt.reply)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAnswer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseAnswer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruncateContent(t *testing.T) {
	long := strings.Repeat("é", maxPromptContent)
	got := truncateContent(long)
	if len(got) > maxPromptContent || !strings.HasPrefix(long, got) || len(got)%2 != 0 {
		t.Errorf("truncateContent split a rune or overran: len %d", len(got))
	}
	if truncateContent("short") != "short" {
		t.Error("short content should be unchanged")
	}
}

func modelServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropicClassifier(t *testing.T) {
	srv := modelServer(t, `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "test-model",
		"content": [{"type": "text", "text": "{\"language\": \"python\", \"relevance\": 0.8}"}],
		"stop_reason": "end_turn", "stop_sequence": null,
		"usage": {"input_tokens": 10, "output_tokens": 5}
	}`)

	c := NewAnthropicClassifier(RemoteConfig{APIKey: "test", Model: "test-model", BaseURL: srv.URL})
	res, err := c.Classify(context.Background(), "def f(): pass")
	if err != nil {
		t.Fatal(err)
	}
	if res.Language != lang.Python || res.Relevance != 0.8 {
		t.Errorf("Classify() = %v, want python 0.8", res)
	}
}

func TestOpenAIClassifier(t *testing.T) {
	srv := modelServer(t, `{
		"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "test-model",
		"choices": [{"index": 0, "finish_reason": "stop",
			"message": {"role": "assistant", "content": "{\"language\": \"rust\", \"relevance\": 0.6}"}}]
	}`)

	c := NewOpenAIClassifier(RemoteConfig{APIKey: "test", Model: "test-model", BaseURL: srv.URL + "/v1"})
	res, err := c.Classify(context.Background(), "fn main() {}")
	if err != nil {
		t.Fatal(err)
	}
	if res.Language != lang.Rust || res.Relevance != 0.6 {
		t.Errorf("Classify() = %v, want rust 0.6", res)
	}
}

func TestRemoteClassifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"invalid_request_error","message":"bad"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewAnthropicClassifier(RemoteConfig{APIKey: "test", Model: "m", BaseURL: srv.URL})
	if _, err := c.Classify(context.Background(), "x"); err == nil {
		t.Error("expected error from failing endpoint")
	}
}
