// Package pipeline sequences one chat turn through its five stages:
// conversation, computation, enrichment, explanation and persistence.
// Computation is the only fatal stage; enrichment degrades per collaborator
// and persistence is fire-and-log.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"liuren/internal/algorithm"
	"liuren/internal/conversation"
	"liuren/internal/explain"
	"liuren/internal/interpret"
	"liuren/internal/logging"
	"liuren/internal/perception"
	"liuren/internal/retrieval"
	"liuren/internal/store"
)

// Status classifies a turn's outcome for the caller.
type Status string

const (
	StatusSuccess             Status = "success"
	StatusClarificationNeeded Status = "clarification_needed"
	StatusToolError           Status = "tool_error"
	StatusUnsupportedIntent   Status = "unsupported_intent"
	StatusError               Status = "error"
)

// Meta carries per-turn observability data.
type Meta struct {
	SessionID    string
	Intent       string
	StageTimings map[string]time.Duration
	Degraded     []string
}

// Response is what one processed turn returns.
type Response struct {
	Reply            string
	Status           Status
	StructuredResult *algorithm.Output
	Meta             Meta
}

// Options bounds the coordinator's stages.
type Options struct {
	ComputeTimeout    time.Duration
	EnrichTimeout     time.Duration
	MaxComputeWorkers int64
	RetrievalTopK     int
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		ComputeTimeout:    10 * time.Second,
		EnrichTimeout:     3 * time.Second,
		MaxComputeWorkers: 4,
		RetrievalTopK:     3,
	}
}

// Coordinator wires the stages together. Shared collaborators are read-only
// or internally synchronized; per-turn state lives on the stack of Handle.
type Coordinator struct {
	conv      *conversation.Engine
	registry  *algorithm.Registry
	searcher  retrieval.Searcher
	profiles  *store.ProfileStore
	generator explain.Generator
	records   *store.RecordStore
	opts      Options

	computeSem *semaphore.Weighted

	mu       sync.Mutex
	sessions map[string]*conversation.State
}

// New assembles a coordinator. Searcher, profiles and records may be nil;
// the matching stages then degrade or skip.
func New(conv *conversation.Engine, registry *algorithm.Registry, searcher retrieval.Searcher,
	profiles *store.ProfileStore, generator explain.Generator, records *store.RecordStore,
	opts Options) (*Coordinator, error) {
	if conv == nil {
		return nil, fmt.Errorf("pipeline: nil conversation engine")
	}
	if registry == nil {
		return nil, fmt.Errorf("pipeline: nil registry")
	}
	if generator == nil {
		return nil, fmt.Errorf("pipeline: nil explanation generator")
	}
	if opts.ComputeTimeout <= 0 || opts.EnrichTimeout <= 0 || opts.MaxComputeWorkers <= 0 {
		return nil, fmt.Errorf("pipeline: invalid stage bounds")
	}

	return &Coordinator{
		conv:       conv,
		registry:   registry,
		searcher:   searcher,
		profiles:   profiles,
		generator:  generator,
		records:    records,
		opts:       opts,
		computeSem: semaphore.NewWeighted(opts.MaxComputeWorkers),
		sessions:   make(map[string]*conversation.State),
	}, nil
}

// session returns the state for sessionID, creating it on first use.
func (c *Coordinator) session(sessionID string) *conversation.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.sessions[sessionID]
	if !ok {
		st = &conversation.State{}
		c.sessions[sessionID] = st
	}
	return st
}

// ResetSession drops the conversation state for sessionID.
func (c *Coordinator) ResetSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionID)
}

// Handle processes one user message. It never panics: unexpected failures
// surface as the generic error status.
func (c *Coordinator) Handle(ctx context.Context, sessionID, userID, text string) (resp Response) {
	resp.Meta = Meta{
		SessionID:    sessionID,
		StageTimings: make(map[string]time.Duration),
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Get(logging.CategoryPipeline).Error("panic recovered: %v", r)
			resp = Response{
				Reply:  "抱歉，系统出了点问题，请稍后再试。",
				Status: StatusError,
				Meta:   resp.Meta,
			}
		}
	}()

	// Stage 1: conversation.
	convStart := time.Now()
	state := c.session(sessionID)
	outcome := c.conv.Process(ctx, state, text, perception.Hints{Now: time.Now(), UserID: userID})
	resp.Meta.StageTimings["conversation"] = time.Since(convStart)
	resp.Meta.Intent = outcome.Intent

	if outcome.Status != conversation.StatusReady {
		resp.Reply = outcome.Reply
		resp.Status = StatusClarificationNeeded
		return resp
	}

	inputs, hint := inputsFromSlots(outcome.Slots, userID)

	adapter, ok := c.registry.Route(hint)
	if !ok {
		logging.Pipeline("unsupported algorithm hint %q", hint)
		resp.Reply = "抱歉，暂不支持这种占卜方式。"
		resp.Status = StatusUnsupportedIntent
		return resp
	}

	// Stage 2: computation. Fatal on failure or timeout.
	computeStart := time.Now()
	output, err := c.compute(ctx, adapter, inputs)
	resp.Meta.StageTimings["computation"] = time.Since(computeStart)
	if err != nil {
		logging.Get(logging.CategoryPipeline).Error("computation failed: %v", err)
		resp.Reply = "起卦计算失败，请稍后重试。"
		resp.Status = StatusToolError
		return resp
	}

	// Stage 3: enrichment. Each collaborator degrades independently.
	enrichStart := time.Now()
	snippets, profile, degraded := c.enrich(ctx, userID, output, inputs)
	resp.Meta.StageTimings["enrichment"] = time.Since(enrichStart)
	resp.Meta.Degraded = degraded

	// Stage 4: explanation.
	explainStart := time.Now()
	reply, err := c.generator.Generate(ctx, explain.Request{
		Chart:          output.Chart,
		Interpretation: output.Interpretation,
		LostObject:     output.LostObject,
		Snippets:       snippets,
		Profile:        profile,
	})
	resp.Meta.StageTimings["explanation"] = time.Since(explainStart)
	if err != nil {
		// The template fallback makes this near-impossible, but a broken
		// generator still must not leave the user without a reply.
		logging.Get(logging.CategoryPipeline).Error("explanation failed: %v", err)
		reply = output.Summary
	}

	resp.Reply = reply
	resp.Status = StatusSuccess
	resp.StructuredResult = output

	// Stage 5: persistence, fire-and-log.
	c.persist(userID, inputs, output, reply)

	// The next turn starts a fresh request.
	c.ResetSession(sessionID)
	return resp
}

// inputsFromSlots maps completed conversation slots to adapter inputs. The
// conversation layer guarantees the required pointers are non-nil at READY.
func inputsFromSlots(slots conversation.Slots, userID string) (algorithm.Inputs, string) {
	in := algorithm.Inputs{
		Operation: algorithm.OpInterpret,
		Number1:   *slots.Number1,
		Number2:   *slots.Number2,
	}
	if slots.Gender != nil {
		in.Gender = *slots.Gender
	}
	if slots.QuestionType != nil {
		in.QuestionType = *slots.QuestionType
	}
	if slots.AskTime != nil {
		in.AskTime = *slots.AskTime
	}
	if slots.Description != nil {
		in.Description = *slots.Description
	}
	if in.QuestionType == interpret.QuestionLostItem && in.Description != "" {
		in.Operation = algorithm.OpFindLostObject
	}

	hint := ""
	if slots.AlgorithmHint != nil {
		hint = *slots.AlgorithmHint
	}
	return in, hint
}

// compute runs the adapter under the worker bound with a hard timeout. A
// timed-out run is abandoned, not cancelled: the goroutine finishes on its
// own and its result is dropped, so adapters must be safe to abandon.
func (c *Coordinator) compute(ctx context.Context, adapter algorithm.Adapter, in algorithm.Inputs) (*algorithm.Output, error) {
	if err := c.computeSem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire compute slot: %w", err)
	}

	type result struct {
		out *algorithm.Output
		err error
	}
	done := make(chan result, 1)

	go func() {
		defer c.computeSem.Release(1)
		out, err := adapter.Run(context.WithoutCancel(ctx), in)
		done <- result{out: out, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("adapter %s: %w", adapter.Name(), r.err)
		}
		return r.out, nil
	case <-time.After(c.opts.ComputeTimeout):
		return nil, fmt.Errorf("adapter %s: computation timed out after %v", adapter.Name(), c.opts.ComputeTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// enrich runs snippet retrieval and profile lookup concurrently under the
// enrichment timeout. Failures and timeouts degrade to absent results; the
// turn still succeeds.
func (c *Coordinator) enrich(ctx context.Context, userID string, output *algorithm.Output, in algorithm.Inputs) ([]retrieval.Hit, *store.Profile, []string) {
	enrichCtx, cancel := context.WithTimeout(ctx, c.opts.EnrichTimeout)
	defer cancel()

	var (
		mu       sync.Mutex
		snippets []retrieval.Hit
		profile  *store.Profile
		degraded []string
	)

	markDegraded := func(name string, err error) {
		mu.Lock()
		degraded = append(degraded, name)
		mu.Unlock()
		logging.Get(logging.CategoryPipeline).Warn("enrichment %s degraded: %v", name, err)
	}

	g, gctx := errgroup.WithContext(enrichCtx)

	if c.searcher != nil {
		g.Go(func() error {
			keywords := []string{output.Chart.PalaceAtLuogong().Name, in.QuestionType}
			hits, err := c.searcher.Search(gctx, keywords, c.opts.RetrievalTopK)
			if err != nil {
				markDegraded("retrieval", err)
				return nil // degradation must not cancel the sibling
			}
			mu.Lock()
			snippets = hits
			mu.Unlock()
			return nil
		})
	}

	if c.profiles != nil && userID != "" {
		g.Go(func() error {
			p, ok, err := c.profiles.Get(gctx, userID)
			if err != nil {
				markDegraded("profile", err)
				return nil
			}
			if ok {
				mu.Lock()
				profile = p
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait() // errors are swallowed above; Wait only synchronizes

	return snippets, profile, degraded
}

// persist saves the record in the background. Failures are logged, never
// surfaced.
func (c *Coordinator) persist(userID string, in algorithm.Inputs, output *algorithm.Output, reply string) {
	if c.records == nil || userID == "" {
		return
	}

	rec := store.Record{
		UserID:       userID,
		Number1:      in.Number1,
		Number2:      in.Number2,
		Gender:       in.Gender,
		QuestionType: in.QuestionType,
		AskTime:      in.AskTime,
		Luogong:      output.Chart.Luogong,
		Palace:       output.Chart.PalaceAtLuogong().Name,
		Summary:      output.Summary,
		Reply:        reply,
	}
	if output.Interpretation != nil {
		rec.Favorable = output.Interpretation.Favorable
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if id, err := c.records.Save(ctx, rec); err != nil {
			logging.Get(logging.CategoryPipeline).Warn("record save failed: %v", err)
		} else {
			logging.PipelineDebug("record %s saved", id)
		}
	}()
}
