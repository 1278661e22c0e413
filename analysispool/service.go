package analysispool

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"gw2_isac/analysis"
	"gw2_isac/archive"
	"gw2_isac/cache"
	"gw2_isac/eilog"
	"gw2_isac/gw2"
	"gw2_isac/history"
	"gw2_isac/render"
	"gw2_isac/share"
	"gw2_isac/share/parallel"
	"gw2_isac/share/semaphore"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const DefaultChannel = "default"

var (
	ErrNoLinks  = errors.New("no dps.report links")
	ErrFetching = errors.New("failed to download logs")
	ErrAnalyze  = errors.New("failed to analyze logs")
)

// Message is the text shown to the requester for an error returned by Run.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNoLinks):
		return "No logs could be found in your input. Did you include 'https' in your dps.report links?"
	case errors.Is(err, ErrFetching):
		return "There was an error downloading your logs. Maybe dps.report is down?"
	case share.IsContextClosedError(err):
		return "The analysis was cancelled."
	default:
		return "Your logs could not be analyzed."
	}
}

type LogFetcher interface {
	Fetch(ctx context.Context, permalink string) (*eilog.Log, error)
}

type Options struct {
	Logs    LogFetcher
	Refs    *gw2.ReferenceData
	Bench   analysis.BenchSource
	History *history.Store    // optional
	Archive *archive.Archiver // optional
	Results *cache.Storage    // optional

	Workers    int
	Concurrent int
	Thresholds analysis.Thresholds
}

type Service struct {
	logs       LogFetcher
	refs       *gw2.ReferenceData
	bench      analysis.BenchSource
	history    *history.Store
	archive    *archive.Archiver
	results    *cache.Storage
	workers    int
	thresholds analysis.Thresholds

	sema *semaphore.Semaphore
}

type Result struct {
	Report   *analysis.Report `json:"report"`
	Markdown string           `json:"markdown"`
}

func New(opt Options) *Service {
	if opt.Workers < 1 {
		opt.Workers = 1
	}
	if opt.Concurrent < 1 {
		opt.Concurrent = 1
	}
	if opt.Thresholds == (analysis.Thresholds{}) {
		opt.Thresholds = analysis.DefaultThresholds
	}

	return &Service{
		logs:       opt.Logs,
		refs:       opt.Refs,
		bench:      opt.Bench,
		history:    opt.History,
		archive:    opt.Archive,
		results:    opt.Results,
		workers:    opt.Workers,
		thresholds: opt.Thresholds,
		sema:       semaphore.New(opt.Concurrent),
	}
}

// Settings returns the stored settings of the channel, or the defaults without a history store.
func (s *Service) Settings(ctx context.Context, channel string) (history.Settings, error) {
	if s.history == nil {
		return history.DefaultSettings, nil
	}
	return s.history.Settings(ctx, channel)
}

// Run downloads the logs linked in req, analyzes them and stores the report.
// progress may be called from several goroutines at once.
func (s *Service) Run(ctx context.Context, req *Request, progress func(string)) (*Result, error) {
	if progress == nil {
		progress = func(string) {}
	}

	links := eilog.ExtractPermalinks(req.Logs)
	if len(links) == 0 {
		return nil, ErrNoLinks
	}

	channel := req.Channel
	if channel == "" {
		channel = DefaultChannel
	}

	base, err := s.Settings(ctx, channel)
	if err != nil {
		share.Report(err)
		base = history.DefaultSettings
	}
	st := req.settings(base)

	key := requestKey(channel, links, st)
	if s.results != nil {
		var res Result
		if s.results.Load(key, &res) && res.Report != nil {
			return &res, nil
		}
	}

	err = s.sema.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.sema.Release()

	id := uuid.NewString()
	log.Printf("%s: Received analysis request for channel [%s] with %d logs...", id, channel, len(links))

	logs, err := s.download(ctx, id, links, progress)
	if err != nil {
		return nil, err
	}

	actx := analysis.Context{
		Refs:          s.refs,
		Thresholds:    s.thresholds,
		InteractionID: id,
	}

	progress("Analyzing logs...")
	run, err := analysis.Analyze(actx, logs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalyze, err)
	}

	report := &analysis.Report{
		ID:       id,
		Channel:  channel,
		Name:     st.Name,
		Created:  time.Now(),
		WithHeal: st.WithHeal,
		Run:      run,
		Gold:     analysis.TopStats(run, 0, st.WithHeal),
		Silver:   analysis.TopStats(run, 1, st.WithHeal),
	}

	if st.CompareWingman {
		progress("Comparing to wingman benchmarks...")
		report.Dps = analysis.CompareToBenchmarks(actx, s.bench, run.Pulls, run.Players, false)
		report.Support = analysis.CompareToBenchmarks(actx, s.bench, run.Pulls, run.Players, true)
	}
	if st.AnalyzeBoons {
		progress("Analyzing boons...")
		report.Boons = analysis.BoonStats(run, s.refs)
	}

	md, err := render.Markdown(report, s.refs)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Report:   report,
		Markdown: md,
	}

	log.Printf("%s: Successfully built report.", id)

	s.persist(ctx, res)
	if s.results != nil {
		s.results.Save(key, res)
	}

	return res, nil
}

func (s *Service) download(ctx context.Context, id string, links []string, progress func(string)) ([]analysis.SourceLog, error) {
	log.Printf("%s: Fetching %d logs...", id, len(links))
	progress(fmt.Sprintf("Downloading %d logs...", len(links)))

	logs := make([]analysis.SourceLog, len(links))
	var done int32

	p := parallel.New(s.workers)
	p.Reset(ctx)
	for i, link := range links {
		i, link := i, link
		p.Add(func(ctx context.Context) error {
			l, err := s.logs.Fetch(ctx, link)
			if err != nil {
				return errors.WithMessage(err, link)
			}
			logs[i] = analysis.SourceLog{Link: link, Log: l}

			n := atomic.AddInt32(&done, 1)
			progress(fmt.Sprintf("Downloaded %d/%d logs", n, len(links)))
			return nil
		})
	}

	err := p.Wait()
	if err != nil {
		if share.IsContextClosedError(err) && ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrFetching, err)
	}

	log.Printf("%s: Downloaded logs.", id)
	return logs, nil
}

// persist failures are reported but never fail the request.
func (s *Service) persist(ctx context.Context, res *Result) {
	if s.history != nil {
		err := s.history.SaveRun(ctx, res.Report)
		if err != nil {
			share.Report(err)
		}
	}

	if s.archive.Enabled() {
		err := s.archive.Put(ctx, res.Report)
		if err != nil {
			share.Report(err)
		}
	}
}
