package sources

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/fetch"
	"github.com/jonathan/job-finder/internal/types"
)

// GuestSearchURL is LinkedIn's unauthenticated job search endpoint; it answers with an HTML fragment of <li> cards.
const GuestSearchURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"

// Default politeness delay bounds before each request
const (
	DefaultDelayMin = 1 * time.Second
	DefaultDelayMax = 2 * time.Second
)

// LinkedInOptions configures the live adapter
type LinkedInOptions struct {
	// BaseURL overrides GuestSearchURL
	BaseURL  string
	Fetcher  fetch.Fetcher
	DelayMin time.Duration
	DelayMax time.Duration
	Logger   zerolog.Logger
}

// LinkedIn scrapes the public guest job search
type LinkedIn struct {
	baseURL  string
	fetcher  fetch.Fetcher
	delayMin time.Duration
	delayMax time.Duration
	logger   zerolog.Logger
	parse    func(*goquery.Selection) (types.JobRecord, bool)
}

// NewLinkedIn creates the live adapter. Negative delays are treated as zero.
func NewLinkedIn(opts LinkedInOptions) *LinkedIn {
	l := &LinkedIn{
		baseURL:  opts.BaseURL,
		fetcher:  opts.Fetcher,
		delayMin: max(opts.DelayMin, 0),
		delayMax: max(opts.DelayMax, 0),
		logger:   opts.Logger.With().Str("adapter", "linkedin").Logger(),
		parse:    parseCard,
	}
	if l.baseURL == "" {
		l.baseURL = GuestSearchURL
	}
	if l.fetcher == nil {
		l.fetcher = fetch.HTTPFetcher{Options: fetch.DefaultOptions()}
	}
	if l.delayMax < l.delayMin {
		l.delayMax = l.delayMin
	}
	return l
}

// Name implements Adapter
func (l *LinkedIn) Name() string {
	return "linkedin"
}

// Fetch implements Adapter
func (l *LinkedIn) Fetch(ctx context.Context, q Query, maxJobs int) []types.JobRecord {
	searchURL := BuildSearchURL(l.baseURL, q.Params, 0)
	l.logger.Info().Str("url", searchURL).Msg("searching live listings")

	if err := sleepCtx(ctx, l.delay()); err != nil {
		l.logger.Warn().Err(err).Msg("search cancelled before request")
		return nil
	}

	result, err := l.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		l.logger.Error().Err(err).Msg("live search request failed")
		return nil
	}

	jobs := l.parseCards(result.HTML, maxJobs)
	if len(jobs) == 0 {
		l.forget(ctx, searchURL)
	}
	l.logger.Info().Int("jobs", len(jobs)).Bool("cached", result.FromCache).Msg("live search complete")
	return jobs
}

// forget drops a cached page that held no cards, such as an auth wall served while throttled
func (l *LinkedIn) forget(ctx context.Context, searchURL string) {
	inv, ok := l.fetcher.(fetch.Invalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx, searchURL); err != nil {
		l.logger.Warn().Err(err).Msg("failed to drop empty page from cache")
	}
}

// delay returns a uniformly random duration in [delayMin, delayMax]
func (l *LinkedIn) delay() time.Duration {
	spread := l.delayMax - l.delayMin
	if spread <= 0 {
		return l.delayMin
	}
	return l.delayMin + rand.N(spread+1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BuildSearchURL encodes parameters onto base, omitting empty values and a zero start offset.
func BuildSearchURL(base string, p types.SearchParameters, start int) string {
	q := url.Values{}
	if p.Keywords != "" {
		q.Set("keywords", p.Keywords)
	}
	if p.Location != "" {
		q.Set("location", p.Location)
	}
	if start > 0 {
		q.Set("start", strconv.Itoa(start))
	}
	if p.ExperienceCode != nil {
		q.Set("f_E", strconv.Itoa(*p.ExperienceCode))
	}
	if p.WorkTypeCode != nil {
		q.Set("f_WT", strconv.Itoa(*p.WorkTypeCode))
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

// ParseJobCards extracts up to maxJobs listings from a guest search response
func ParseJobCards(html string, maxJobs int, logger zerolog.Logger) []types.JobRecord {
	l := &LinkedIn{logger: logger, parse: parseCard}
	return l.parseCards(html, maxJobs)
}

func (l *LinkedIn) parseCards(html string, maxJobs int) []types.JobRecord {
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}

	doc, err := fetch.ParseHTML(html)
	if err != nil {
		l.logger.Error().Err(err).Msg("unparseable search response")
		return nil
	}

	cards := doc.Find("li")
	l.logger.Debug().Int("cards", cards.Length()).Msg("found candidate job cards")

	jobs := make([]types.JobRecord, 0, min(cards.Length(), maxJobs))
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if job, ok := l.safeParse(i, card); ok {
			jobs = append(jobs, job)
		}
		return len(jobs) < maxJobs
	})
	return jobs
}

func (l *LinkedIn) safeParse(i int, card *goquery.Selection) (job types.JobRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Debug().Int("card", i).Str("panic", fmt.Sprint(r)).Msg("skipping malformed job card")
			job, ok = types.JobRecord{}, false
		}
	}()
	return l.parse(card)
}

func parseCard(card *goquery.Selection) (types.JobRecord, bool) {
	title := fetch.CleanText(card.Find("h3.base-search-card__title").First().Text())
	if title == "" {
		return types.JobRecord{}, false
	}

	job := types.JobRecord{
		Title:       title,
		Company:     fetch.CleanText(card.Find("h4.base-search-card__subtitle").First().Text()),
		Location:    fetch.CleanText(card.Find("span.job-search-card__location").First().Text()),
		Description: fetch.CleanText(card.Find("p.base-search-card__snippet").First().Text()),
	}

	if href, ok := card.Find("a.base-card__full-link").First().Attr("href"); ok {
		job.URL = stripQuery(href)
	}

	if t := card.Find("time").First(); t.Length() > 0 {
		if dt, ok := t.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
			job.PostedDate = strings.TrimSpace(dt)
		} else {
			job.PostedDate = fetch.CleanText(t.Text())
		}
	}

	return job.WithDefaults(), true
}

// stripQuery drops tracking parameters from a job link
func stripQuery(href string) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	return href
}
