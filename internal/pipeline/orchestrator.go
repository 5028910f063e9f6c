// Package pipeline orchestrates a job search from free-text request to results document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/config"
	"github.com/jonathan/job-finder/internal/criteria"
	"github.com/jonathan/job-finder/internal/formatting"
	"github.com/jonathan/job-finder/internal/intent"
	"github.com/jonathan/job-finder/internal/llm"
	"github.com/jonathan/job-finder/internal/observability"
	"github.com/jonathan/job-finder/internal/params"
	"github.com/jonathan/job-finder/internal/profile"
	"github.com/jonathan/job-finder/internal/sources"
	"github.com/jonathan/job-finder/internal/types"
)

// Router decides whether a message is a search and, if not, replies to it
type Router interface {
	Decide(ctx context.Context, message string) types.IntentDecision
	Complete(ctx context.Context, decision types.IntentDecision, message string, history []types.ConversationTurn) types.RouteResult
}

// Dependencies are the stages of a search. Nil stages get deterministic defaults.
type Dependencies struct {
	Router       Router
	Acknowledger profile.Acknowledger
	Extractor    criteria.Extractor
	Normalizer   params.Normalizer
	Adapter      sources.Adapter
	Polisher     formatting.Polisher
	Logger       zerolog.Logger
	MaxJobs      int
	// Printer, when set, receives each intermediate result
	Printer *observability.Printer
}

// Request is a single search invocation
type Request struct {
	Query      string
	ProfileRef string
	History    []types.ConversationTurn
	// SkipRouting treats the query as a search without classifying it
	SkipRouting bool
	OnProgress  ProgressCallback
}

// Result is everything produced by a search
type Result struct {
	RequestID string
	Document  string
	Route     *types.RouteResult
	Jobs      []types.JobRecord
	Searched  bool
}

// Orchestrator runs the stages in order. It is safe for concurrent use
// as long as its stages are.
type Orchestrator struct {
	deps      Dependencies
	configErr error
	closers   []func() error
}

// New creates an orchestrator, filling unset stages with deterministic defaults
func New(deps Dependencies) *Orchestrator {
	if deps.Router == nil {
		deps.Router = intent.NewRouter(nil, deps.Logger)
	}
	if deps.Acknowledger == nil {
		deps.Acknowledger = profile.StaticAcknowledger{}
	}
	if deps.Extractor == nil {
		deps.Extractor = criteria.PassthroughExtractor{}
	}
	if deps.Normalizer == nil {
		deps.Normalizer = params.TableNormalizer{}
	}
	if deps.Adapter == nil {
		deps.Adapter = sources.NewLinkedIn(sources.LinkedInOptions{Logger: deps.Logger})
	}
	if deps.Polisher == nil {
		deps.Polisher = formatting.NopPolisher{}
	}
	if deps.MaxJobs <= 0 {
		deps.MaxJobs = sources.DefaultMaxJobs
	}
	return &Orchestrator{deps: deps}
}

// WithConfigError returns an orchestrator that answers every search with the
// configuration document for err. Routing still works with keyword defaults.
func WithConfigError(err error, logger zerolog.Logger) *Orchestrator {
	o := New(Dependencies{Logger: logger})
	o.configErr = err
	return o
}

// Close releases resources acquired by NewFromConfig
func (o *Orchestrator) Close() error {
	var errs []error
	for _, c := range o.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunSearch always returns a document: results, a no-results notice, a
// conversational reply, or an error notice.
func (o *Orchestrator) RunSearch(ctx context.Context, profileRef, query string) string {
	return o.Run(ctx, Request{Query: query, ProfileRef: profileRef}).Document
}

// Route classifies query and replies to it when it is not a search
func (o *Orchestrator) Route(ctx context.Context, query string, history []types.ConversationTurn) (result types.RouteResult) {
	defer func() {
		if r := recover(); r != nil {
			o.deps.Logger.Error().Str("panic", fmt.Sprint(r)).Msg("routing panicked")
			reply := intent.FallbackReply()
			result = types.RouteResult{Type: types.RouteConversation, Response: &reply}
		}
	}()
	decision := o.deps.Router.Decide(ctx, query)
	return o.deps.Router.Complete(ctx, decision, query, history)
}

// Run executes one request. Panics and errors become documents; nothing escapes.
func (o *Orchestrator) Run(ctx context.Context, req Request) (res Result) {
	requestID := uuid.NewString()
	ctx, logger := observability.WithRequestID(ctx, o.deps.Logger, requestID)
	res.RequestID = requestID

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("search panicked")
			res.Document = FailureDocument(requestID)
		}
		emitProgress(req.OnProgress, logger, requestID, StepComplete, "Search finished", res.Document)
	}()

	if o.configErr != nil {
		return o.fail(logger, res, o.configErr)
	}

	logger.Info().Str("query", req.Query).Bool("profile", strings.TrimSpace(req.ProfileRef) != "").Msg("search started")

	out, err := o.run(ctx, logger, req, requestID)
	out.RequestID = requestID
	if err != nil {
		return o.fail(logger, out, err)
	}
	return out
}

func (o *Orchestrator) fail(logger zerolog.Logger, res Result, err error) Result {
	var missing *config.MissingCredentialError
	if errors.As(err, &missing) {
		logger.Error().Str("credential", missing.Name).Msg("search refused: missing credential")
		res.Document = ConfigErrorDocument(missing.Name)
		return res
	}
	logger.Error().Err(err).Msg("search failed")
	res.Document = FailureDocument(res.RequestID)
	return res
}

func (o *Orchestrator) run(ctx context.Context, logger zerolog.Logger, req Request, requestID string) (Result, error) {
	var res Result
	progress := func(step, message string, content any) {
		emitProgress(req.OnProgress, logger, requestID, step, message, content)
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	if !req.SkipRouting {
		progress(StepRouting, "Understanding your request", nil)
		decision := o.deps.Router.Decide(ctx, req.Query)
		logger.Info().
			Bool("is_job_search", decision.IsJobSearch).
			Float64("confidence", decision.Confidence).
			Str("source", string(decision.Source)).
			Msg("intent classified")
		if o.deps.Printer != nil {
			o.deps.Printer.PrintIntent(decision)
		}

		route := o.deps.Router.Complete(ctx, decision, req.Query, req.History)
		res.Route = &route
		if !route.ShouldSearch {
			if route.Response != nil {
				res.Document = *route.Response
			}
			return res, nil
		}
	}
	res.Searched = true

	var pc *types.ProfileContext
	if strings.TrimSpace(req.ProfileRef) != "" {
		progress(StepProfile, "Reading your profile context", nil)
		ack, err := o.deps.Acknowledger.Acknowledge(ctx, req.ProfileRef)
		if err != nil {
			logger.Warn().Err(err).Str("kind", string(llm.KindOf(err))).Msg("profile acknowledgment failed, continuing without it")
		} else {
			pc = &ack
			progress(StepProfile, ack.Message, ack)
		}
	}

	progress(StepCriteria, "Extracting search criteria", nil)
	crit, err := o.deps.Extractor.Extract(ctx, req.Query, pc)
	if err != nil {
		logger.Warn().Err(err).Str("kind", string(llm.KindOf(err))).Msg("criteria extraction failed, using raw query")
		crit = criteria.Fallback(req.Query)
	}
	logger.Info().Str("job_title", crit.JobTitle).Strs("keywords", crit.Keywords).Msg("criteria extracted")
	progress(StepCriteria, "Criteria extracted", crit)
	if o.deps.Printer != nil {
		o.deps.Printer.PrintCriteria(&crit)
	}

	progress(StepParameters, "Building search parameters", nil)
	p := o.deps.Normalizer.Normalize(ctx, crit, req.Query).Sanitize()
	if p.Keywords == "" {
		p.Keywords = strings.TrimSpace(req.Query)
	}
	progress(StepParameters, "Parameters ready", p)
	if o.deps.Printer != nil {
		o.deps.Printer.PrintParameters(&p)
	}

	progress(StepSearch, "Searching for jobs", nil)
	q := sources.Query{Params: p, Criteria: crit, Profile: pc}
	jobs := sources.SafeFetch(ctx, o.deps.Adapter, q, o.deps.MaxJobs, logger)
	res.Jobs = jobs
	logger.Info().Str("adapter", o.deps.Adapter.Name()).Int("jobs", len(jobs)).Msg("listings fetched")
	progress(StepSearch, fmt.Sprintf("Found %d jobs", len(jobs)), jobs)
	if o.deps.Printer != nil {
		o.deps.Printer.PrintJobs(o.deps.Adapter.Name(), jobs)
	}

	progress(StepFormat, "Formatting results", nil)
	doc := formatting.Render(jobs)
	res.Document = o.deps.Polisher.Polish(ctx, doc, jobs)
	return res, nil
}
