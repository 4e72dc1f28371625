// Package analyzer fetches a lead's website and derives a 0-100 quality
// score used as qualification input.
package analyzer

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	fetchTimeout     = 8 * time.Second
	mobileUserAgent  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	maxBodyBytes     = 1 << 20
	defaultBatchSize = 5
)

// Result is the analysis outcome for one site.
type Result struct {
	Score          int  `json:"score"`
	MobileFriendly bool `json:"mobileFriendly"`
	SSL            bool `json:"ssl"`
	ResponseTimeMs int  `json:"responseTimeMs"`
}

// SiteAnalyzer is implemented by the HTTP analyzer and by test doubles.
type SiteAnalyzer interface {
	Analyze(ctx context.Context, websiteURL string) Result
}

type Analyzer struct {
	httpClient  *http.Client
	logger      *zap.Logger
	Concurrency int
}

func New(logger *zap.Logger) *Analyzer {
	return &Analyzer{
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
		logger:      logger,
		Concurrency: defaultBatchSize,
	}
}

// Analyze fetches the homepage and scores it. A lead with no website
// short-circuits to zero without a network call; a site that exists but
// cannot be fetched scores a flat 5 to stay distinguishable from "no site".
func (a *Analyzer) Analyze(ctx context.Context, websiteURL string) Result {
	if strings.TrimSpace(websiteURL) == "" {
		return Result{Score: 0, MobileFriendly: false, SSL: false}
	}

	fullURL := websiteURL
	if !strings.HasPrefix(fullURL, "http://") && !strings.HasPrefix(fullURL, "https://") {
		fullURL = "https://" + fullURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return Result{Score: 5}
	}
	req.Header.Set("User-Agent", mobileUserAgent)

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Debug("website fetch failed", zap.String("url", fullURL), zap.Error(err))
		return Result{Score: 5}
	}
	defer resp.Body.Close()
	elapsed := time.Since(start)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{Score: 5}
	}

	return scorePage(string(body), resp.Request.URL.Scheme == "https", elapsed)
}

// scorePage applies the additive scoring components, capped at 100.
func scorePage(body string, ssl bool, elapsed time.Duration) Result {
	page := strings.ToLower(body)
	score := 0

	switch {
	case elapsed < time.Second:
		score += 25
	case elapsed < 2*time.Second:
		score += 15
	case elapsed < 4*time.Second:
		score += 5
	}

	if ssl {
		score += 20
	}

	mobileFriendly := strings.Contains(page, `name="viewport"`) || strings.Contains(page, `name='viewport'`)
	if mobileFriendly {
		score += 25
	}

	if containsAny(page, "react", "vue", "__next", "angular", "webpack", "svelte") {
		score += 10
	}
	if containsAny(page, "bootstrap", "tailwind", "foundation.css", "bulma") {
		score += 5
	}
	if strings.Contains(page, `name="description"`) || strings.Contains(page, `name='description'`) {
		score += 10
	}
	if containsAny(page, "application/ld+json", "schema.org", `itemtype=`) {
		score += 5
	}

	if score > 100 {
		score = 100
	}

	return Result{
		Score:          score,
		MobileFriendly: mobileFriendly,
		SSL:            ssl,
		ResponseTimeMs: int(elapsed.Milliseconds()),
	}
}

func containsAny(s string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// AnalyzeBatch analyzes up to Concurrency sites in flight. Results are
// returned positionally; an individual fetch failure never cancels the rest
// of the batch.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, websiteURLs []string) []Result {
	concurrency := a.Concurrency
	if concurrency < 1 {
		concurrency = defaultBatchSize
	}

	results := make([]Result, len(websiteURLs))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, u := range websiteURLs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, u string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = a.Analyze(ctx, u)
		}(i, u)
	}

	wg.Wait()
	return results
}

var _ SiteAnalyzer = (*Analyzer)(nil)
