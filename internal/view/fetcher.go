package view

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"certview/internal/backend"
	viewerrors "certview/internal/errors"
	"certview/internal/logger"
)

const defaultLoadTimeout = 30 * time.Second

// Stats is a point-in-time view of fetch and render activity.
type Stats struct {
	RenderStats
	NetworkErrors uint64
	SchemaErrors  uint64
	InFlight      int64
	LatestSeq     uint64
}

// Fetcher reads the certificate list and hands it to the Renderer. Loads are
// independent: none is cancelled or merged when a newer one starts.
type Fetcher struct {
	client        backend.Client
	renderer      *Renderer
	notices       *Notices
	timeout       time.Duration
	wg            sync.WaitGroup
	inFlight      atomic.Int64
	networkErrors atomic.Uint64
	schemaErrors  atomic.Uint64
	now           func() time.Time
}

// FetcherOption customises a Fetcher.
type FetcherOption func(*Fetcher)

// WithLoadTimeout bounds each asynchronous load.
func WithLoadTimeout(timeout time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

func NewFetcher(client backend.Client, renderer *Renderer, notices *Notices, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:   client,
		renderer: renderer,
		notices:  notices,
		timeout:  defaultLoadTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch loads the list for state and renders it before returning. Network
// and schema failures are returned after posting a notice; the rendered
// table is left as it was.
func (f *Fetcher) Fetch(ctx context.Context, state DisplayState) error {
	seq := f.renderer.Sequencer().Next()
	f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	return f.fetch(ctx, seq, state)
}

// Load starts a fetch in the background and returns its sequence number.
// The load outlives ctx's cancellation but keeps its values.
func (f *Fetcher) Load(ctx context.Context, state DisplayState) uint64 {
	seq := f.renderer.Sequencer().Next()
	f.inFlight.Add(1)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer f.inFlight.Add(-1)
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()
		_ = f.fetch(loadCtx, seq, state)
	}()
	return seq
}

// Wait blocks until every started load has finished.
func (f *Fetcher) Wait() {
	f.wg.Wait()
}

// InFlight returns the number of loads that have not completed.
func (f *Fetcher) InFlight() int64 {
	return f.inFlight.Load()
}

func (f *Fetcher) Stats() Stats {
	return Stats{
		RenderStats:   f.renderer.Stats(),
		NetworkErrors: f.networkErrors.Load(),
		SchemaErrors:  f.schemaErrors.Load(),
		InFlight:      f.inFlight.Load(),
		LatestSeq:     f.renderer.Sequencer().Latest(),
	}
}

func (f *Fetcher) fetch(ctx context.Context, seq uint64, state DisplayState) error {
	logger.ViewEvent("fetch", seq, state.ShowAll).Msg("loading certificates")
	records, err := f.client.ListCertificates(ctx, state.ShowAll)
	if err != nil {
		kind := viewerrors.Kind(err)
		f.countError(kind)
		if !f.renderer.Sequencer().IsLatest(seq) {
			logger.ViewError(seq, state.ShowAll, kind, err).Bool("stale", true).Msg("superseded load failed")
			return err
		}
		f.notices.Post(Notice{Kind: kind, Message: NoticeMessage, Seq: seq, At: f.now()})
		logger.ViewError(seq, state.ShowAll, kind, err).Msg("load failed; keeping previous table")
		return err
	}

	if !f.renderer.Accept(Response{Seq: seq, ShowAll: state.ShowAll, Records: records}) {
		logger.ViewEvent("discard", seq, state.ShowAll).
			Uint64("latest_seq", f.renderer.Sequencer().Latest()).
			Msg("discarded out-of-date response")
		return nil
	}
	f.notices.ClearThrough(seq)
	logger.ViewEvent("render", seq, state.ShowAll).Int("rows", len(records)).Msg("rendered certificates")
	return nil
}

func (f *Fetcher) countError(kind string) {
	if kind == "schema" {
		f.schemaErrors.Add(1)
		return
	}
	f.networkErrors.Add(1)
}
