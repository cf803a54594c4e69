package editor

import (
	"context"
	"time"

	"github.com/dshills/blockpad/internal/detect"
	"github.com/dshills/blockpad/internal/document"
	"github.com/dshills/blockpad/internal/document/delim"
	"github.com/dshills/blockpad/internal/document/enforce"
	"github.com/dshills/blockpad/internal/document/index"
	"github.com/dshills/blockpad/internal/engine/buffer"
)

// RequestDetections submits every auto block whose content changed since
// it was last submitted. It does nothing unless the detector is running.
// Apply calls it after every change; callers use it after starting the
// detector. Requests left unanswered past the expiry are dropped first, so
// their blocks are submitted again.
func (s *Session) RequestDetections() {
	if s.detector == nil || !s.detector.IsRunning() {
		return
	}
	s.expireDetections(time.Now())

	ix := s.snap.Index()
	submitted := make(map[buffer.ByteOffset]string, len(s.submitted))
	for _, b := range ix.Blocks() {
		if b.Implicit || !b.Auto {
			continue
		}
		content := ix.Content(b.Index)
		if last, ok := s.submitted[b.Delimiter.Start]; ok && last == content {
			submitted[b.Delimiter.Start] = content
			continue
		}
		if !s.policy.Eligible(content) {
			continue
		}
		req := detect.Request{
			ID:         s.track(b, content),
			Session:    s.id,
			Generation: s.snap.Generation(),
			Block:      b.Index,
			Content:    content,
		}
		if err := s.detector.Submit(req); err != nil {
			s.logger.Debug("detect %s: %v", b, err)
			delete(s.pending, req.ID)
			continue
		}
		submitted[b.Delimiter.Start] = content
	}
	s.submitted = submitted
}

// expireDetections drops requests sent more than the expiry before now,
// together with the record of their submission.
func (s *Session) expireDetections(now time.Time) {
	for id, p := range s.pending {
		if now.Sub(p.sent) <= s.expiry {
			continue
		}
		s.logger.Debug("detect block at %d: request %d expired", p.delim.Start, id)
		delete(s.pending, id)
		if s.submitted[p.delim.Start] == p.content {
			delete(s.submitted, p.delim.Start)
		}
	}
}

// track registers a pending request for block b and returns its ID. An
// older request for the same block is superseded.
func (s *Session) track(b index.Block, content string) uint64 {
	for id, p := range s.pending {
		if p.delim.Start == b.Delimiter.Start {
			delete(s.pending, id)
		}
	}
	s.nextID++
	s.pending[s.nextID] = pendingDetection{
		delim:      b.Delimiter,
		content:    content,
		generation: s.snap.Generation(),
		sent:       time.Now(),
	}
	return s.nextID
}

// remapDetections moves the delimiters of pending and submitted requests
// through edits applied to the text of old. A request whose delimiter was
// removed is dropped; an edit that replaces exactly the delimiter with
// another one keeps it.
func (s *Session) remapDetections(old *index.Index, edits []buffer.Edit) {
	for id, p := range s.pending {
		if removesDelimiter(p.delim, edits) {
			delete(s.pending, id)
			continue
		}
		p.delim = mapDelimiter(p.delim, edits)
		s.pending[id] = p
	}

	submitted := make(map[buffer.ByteOffset]string, len(s.submitted))
	for start, content := range s.submitted {
		b := old.BlockAt(start)
		if b.Implicit || b.Delimiter.Start != start || removesDelimiter(b.Delimiter, edits) {
			continue
		}
		submitted[mapDelimiter(b.Delimiter, edits).Start] = content
	}
	s.submitted = submitted
}

func removesDelimiter(d buffer.Range, edits []buffer.Edit) bool {
	for _, e := range edits {
		if e.Range.ContainsRange(d) && !(e.Range == d && delim.IsDelimiter(e.NewText)) {
			return true
		}
	}
	return false
}

// mapDelimiter maps a delimiter span that edits do not remove. Its length
// only changes when an edit replaces it whole.
func mapDelimiter(d buffer.Range, edits []buffer.Edit) buffer.Range {
	start := buffer.MapOffset(d.Start, edits)
	for _, e := range edits {
		if e.Range == d {
			return buffer.NewRange(start, start+len(e.NewText))
		}
	}
	return buffer.NewRange(start, start+d.Len())
}

// PendingDetections returns the number of requests awaiting a response.
func (s *Session) PendingDetections() int {
	return len(s.pending)
}

// HandleDetection applies a detection response and reports whether the
// block's language changed. The response is discarded when it belongs to
// another session, when its request was superseded, when the policy
// rejects it, or when the block was deleted, left auto mode, or had its
// content changed since the request.
func (s *Session) HandleDetection(resp detect.Response) bool {
	if resp.Session != s.id {
		return false
	}
	p, ok := s.pending[resp.ID]
	if !ok {
		return false
	}
	delete(s.pending, resp.ID)

	if resp.Err != nil {
		s.logger.Warn("detect block %d: %v", resp.Block, resp.Err)
		return false
	}
	if !s.policy.Accept(resp) {
		s.logger.Debug("detect block %d: %s below policy", resp.Block, resp.Result)
		return false
	}

	ix := s.snap.Index()
	b := ix.BlockAt(p.delim.Start)
	switch {
	case b.Implicit || b.Delimiter != p.delim:
		s.logger.Debug("detect block %d: block gone", resp.Block)
		return false
	case !b.Auto:
		s.logger.Debug("detect %s: no longer auto", b)
		return false
	case ix.Content(b.Index) != p.content:
		s.logger.Debug("detect %s: content changed since generation %d", b, p.generation)
		return false
	case b.Language == resp.Language:
		return false
	}

	tx := document.Transaction{
		Name:   "detect language",
		Origin: document.OriginLanguage,
		Edits:  []buffer.Edit{buffer.NewEdit(b.Delimiter, delim.Format(resp.Language, true))},
	}
	v, err := s.apply(tx, recordAmend)
	if err != nil {
		s.logger.Warn("detect %s: %v", b, err)
		return false
	}
	if v.Action == enforce.Rejected {
		return false
	}
	s.logger.Info("detected %s for block %d", resp.Result, b.Index)
	return true
}

// ApplyDetections handles every response already waiting on the
// detector's result channel without blocking. It returns the number of
// blocks whose language changed.
func (s *Session) ApplyDetections() int {
	if s.detector == nil {
		return 0
	}
	n := 0
	for {
		select {
		case resp, ok := <-s.detector.Results():
			if !ok {
				return n
			}
			if s.HandleDetection(resp) {
				n++
			}
		default:
			return n
		}
	}
}

// NextDetection blocks until one response arrives and handles it.
func (s *Session) NextDetection(ctx context.Context) (bool, error) {
	if s.detector == nil {
		return false, detect.ErrNotRunning
	}
	select {
	case resp, ok := <-s.detector.Results():
		if !ok {
			return false, detect.ErrNotRunning
		}
		return s.HandleDetection(resp), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
