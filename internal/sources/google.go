package sources

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/fetch"
	"github.com/jonathan/job-finder/internal/types"
)

// GoogleJobsURL is the SerpAPI search endpoint queried with engine=google_jobs
const GoogleJobsURL = "https://serpapi.com/search.json"

const googleJobsTimeout = 20 * time.Second

// ErrNoSerpAPIKey is returned by NewGoogleJobs without an API key
var ErrNoSerpAPIKey = errors.New("google jobs source requires SERPAPI_API_KEY")

// GoogleJobsOptions configures the Google Jobs adapter
type GoogleJobsOptions struct {
	APIKey string
	// BaseURL overrides GoogleJobsURL
	BaseURL string
	Fetcher fetch.Fetcher
	Logger  zerolog.Logger
}

// GoogleJobs searches Google Jobs listings through SerpAPI
type GoogleJobs struct {
	apiKey  string
	baseURL string
	fetcher fetch.Fetcher
	logger  zerolog.Logger
}

type googleJobsResponse struct {
	Error   string `json:"error"`
	Results []struct {
		Title        string `json:"title"`
		CompanyName  string `json:"company_name"`
		Location     string `json:"location"`
		Description  string `json:"description"`
		Link         string `json:"link"`
		ApplyOptions []struct {
			Link string `json:"link"`
		} `json:"apply_options"`
		DetectedExtensions struct {
			PostedAt string `json:"posted_at"`
		} `json:"detected_extensions"`
	} `json:"jobs_results"`
}

// NewGoogleJobs creates the adapter
func NewGoogleJobs(opts GoogleJobsOptions) (*GoogleJobs, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNoSerpAPIKey
	}
	g := &GoogleJobs{
		apiKey:  opts.APIKey,
		baseURL: opts.BaseURL,
		fetcher: opts.Fetcher,
		logger:  opts.Logger.With().Str("adapter", "google_jobs").Logger(),
	}
	if g.baseURL == "" {
		g.baseURL = GoogleJobsURL
	}
	if g.fetcher == nil {
		g.fetcher = fetch.HTTPFetcher{Options: &fetch.Options{
			Timeout: googleJobsTimeout,
			Headers: map[string]string{"Accept": "application/json"},
		}}
	}
	return g, nil
}

// Name implements Adapter
func (g *GoogleJobs) Name() string {
	return "google_jobs"
}

// SearchURL builds the SerpAPI request; q is the keywords followed by the location
func (g *GoogleJobs) SearchURL(p types.SearchParameters) string {
	q := strings.TrimSpace(strings.TrimSpace(p.Keywords) + " " + strings.TrimSpace(p.Location))

	v := url.Values{}
	v.Set("engine", "google_jobs")
	v.Set("q", q)
	v.Set("hl", "en")
	v.Set("api_key", g.apiKey)
	return g.baseURL + "?" + v.Encode()
}

// Fetch implements Adapter
func (g *GoogleJobs) Fetch(ctx context.Context, q Query, maxJobs int) []types.JobRecord {
	g.logger.Info().Str("keywords", q.Params.Keywords).Str("location", q.Params.Location).Msg("searching google jobs")

	result, err := g.fetcher.Fetch(ctx, g.SearchURL(q.Params))
	if err != nil {
		g.logger.Error().Str("error", g.redact(err.Error())).Msg("google jobs request failed")
		return nil
	}

	jobs, err := parseGoogleJobs([]byte(result.HTML), maxJobs)
	if err != nil {
		g.logger.Error().Str("error", g.redact(err.Error())).Msg("google jobs response unusable")
		return nil
	}
	g.logger.Info().Int("jobs", len(jobs)).Msg("google jobs search complete")
	return jobs
}

// redact keeps the API key out of logs; fetch errors carry the request URL
func (g *GoogleJobs) redact(s string) string {
	return strings.ReplaceAll(s, url.QueryEscape(g.apiKey), "REDACTED")
}

func parseGoogleJobs(body []byte, maxJobs int) ([]types.JobRecord, error) {
	var resp googleJobsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" && len(resp.Results) == 0 {
		// SerpAPI reports "no results" through the error field as well
		if strings.Contains(strings.ToLower(resp.Error), "hasn't returned any results") {
			return nil, nil
		}
		return nil, errors.New(resp.Error)
	}

	jobs := make([]types.JobRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		if maxJobs > 0 && len(jobs) >= maxJobs {
			break
		}
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		link := r.Link
		if len(r.ApplyOptions) > 0 && r.ApplyOptions[0].Link != "" {
			link = r.ApplyOptions[0].Link
		}
		jobs = append(jobs, types.JobRecord{
			Title:       r.Title,
			Company:     r.CompanyName,
			Location:    r.Location,
			Description: r.Description,
			URL:         link,
			PostedDate:  r.DetectedExtensions.PostedAt,
		}.WithDefaults())
	}
	return jobs, nil
}
