// Package detect guesses the language of auto-mode blocks off the editor
// goroutine.
//
// A Detector owns a bounded queue and a pool of workers. Each Request
// carries a block's content plus the identifiers the session needs to match
// the Response back to its block:
//
//	d := detect.New(detect.NewChromaClassifier(), detect.WithWorkers(2))
//	d.Start()
//	defer d.Stop(ctx)
//
//	d.Submit(detect.Request{ID: 1, Block: 3, Content: content})
//	resp := <-d.Results()
//
// Content that is a complete JSON object or array is answered directly
// with MaxRelevance. Everything else goes to a Classifier: chroma's lexer
// analysers, a sandboxed Lua script or a remote model. The Detector does
// not decide whether a result is applied; Policy and the session's
// stale-result checks do that.
package detect
