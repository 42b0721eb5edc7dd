package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"group-lead-scraper-go/internal/dedup"
	"group-lead-scraper-go/internal/metrics"
	"group-lead-scraper-go/internal/models"
	"group-lead-scraper-go/internal/notify"
	"group-lead-scraper-go/internal/parser"
	"group-lead-scraper-go/internal/scraper"
	"group-lead-scraper-go/internal/storage"
)

const (
	cutoffLayout      = "2006-01-02"
	defaultCutoffDays = 3
)

// Options wires the collaborators of a Pipeline
type Options struct {
	Fetcher      scraper.Fetcher
	Store        storage.Store
	Classifier   Classifier
	Notifier     notify.Notifier
	Metrics      *metrics.Metrics
	SnapshotPath string
	CutoffDays   int
	Now          func() time.Time
}

// Pipeline runs fetch, dedupe, classify and persist for each group
type Pipeline struct {
	fetcher      scraper.Fetcher
	store        storage.Store
	dedup        *dedup.Deduplicator
	classifier   Classifier
	notifier     notify.Notifier
	metrics      *metrics.Metrics
	snapshotPath string
	cutoffDays   int
	now          func() time.Time
}

// New creates a Pipeline
func New(opts Options) *Pipeline {
	p := &Pipeline{
		fetcher:      opts.Fetcher,
		store:        opts.Store,
		dedup:        dedup.New(opts.Store),
		classifier:   opts.Classifier,
		notifier:     opts.Notifier,
		metrics:      opts.Metrics,
		snapshotPath: opts.SnapshotPath,
		cutoffDays:   opts.CutoffDays,
		now:          opts.Now,
	}
	if p.notifier == nil {
		p.notifier = notify.Nop{}
	}
	if p.metrics == nil {
		p.metrics = metrics.NewMetrics(prometheus.NewRegistry())
	}
	if p.cutoffDays <= 0 {
		p.cutoffDays = defaultCutoffDays
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Cutoff formats the recency cutoff days before now
func Cutoff(now time.Time, days int) string {
	return now.AddDate(0, 0, -days).Format(cutoffLayout)
}

// RunBatch processes groups one after another with a single shared cutoff.
// A failing group is recorded in its report and the batch moves on.
// Cancelling ctx stops the batch before the next group.
func (p *Pipeline) RunBatch(ctx context.Context, groups []models.Group) BatchReport {
	logrus.Info("Starting to scrape groups")

	report := BatchReport{
		StartedAt: p.now(),
		Cutoff:    Cutoff(p.now(), p.cutoffDays),
	}
	p.metrics.BatchRuns.Inc()

	for _, group := range groups {
		if ctx.Err() != nil {
			logrus.Warnf("Batch cancelled, skipping remaining groups: %v", ctx.Err())
			report.Cancelled = true
			break
		}
		logrus.Infof("Scraping group: %s", group.URL)
		report.Groups = append(report.Groups, p.RunGroup(ctx, group, report.Cutoff))
	}

	report.FinishedAt = p.now()
	p.metrics.BatchDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	if report.Failed() == 0 && !report.Cancelled {
		p.metrics.LastBatchSuccess.Set(float64(report.FinishedAt.Unix()))
	}

	logrus.WithFields(logrus.Fields{
		"groups": len(report.Groups),
		"failed": report.Failed(),
		"cutoff": report.Cutoff,
	}).Info("Finished scraping groups")
	return report
}

// RunGroup processes a single group with the given cutoff
func (p *Pipeline) RunGroup(ctx context.Context, group models.Group, cutoff string) GroupReport {
	start := time.Now()
	report := GroupReport{GroupURL: group.URL}

	if err := p.runGroup(ctx, group, cutoff, &report); err != nil {
		report.Error = err.Error()
	}
	report.Duration = time.Since(start)

	p.metrics.GroupRuns.WithLabelValues(report.Status()).Inc()
	p.metrics.GroupDuration.Observe(report.Duration.Seconds())

	entry := logrus.WithFields(logrus.Fields{
		"group":       group.URL,
		"fetched":     report.Fetched,
		"rejected":    report.Rejected,
		"new_posts":   report.NewPosts,
		"classified":  report.Classified,
		"failures":    report.ClassifyFailures,
		"leads":       report.Leads,
		"duration_ms": report.Duration.Milliseconds(),
	})
	if report.Error != "" {
		entry.Errorf("Group run failed: %s", report.Error)
	} else {
		entry.Info("Group run completed")
	}

	p.recordRun(ctx, cutoff, report)
	return report
}

func (p *Pipeline) runGroup(ctx context.Context, group models.Group, cutoff string, report *GroupReport) error {
	logrus.Info("Starting to scrape group")

	result, err := p.fetcher.Fetch(ctx, scraper.FetchRequest{
		GroupURL:     group.URL,
		ResultsLimit: group.MaxPosts,
		ViewOption:   group.ViewOption,
		NewerThan:    cutoff,
	})
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	report.Fetched = len(result.Records)
	p.metrics.PostsFetched.Add(float64(report.Fetched))

	if p.snapshotPath != "" {
		if err := scraper.WriteSnapshot(p.snapshotPath, result.Records); err != nil {
			logrus.Warnf("Failed to save raw snapshot: %v", err)
		}
	}

	parsed := parser.Parse(result.Records)
	report.Parsed = len(parsed.Posts)
	report.Rejected = len(parsed.Rejected)
	p.metrics.PostsRejected.Add(float64(report.Rejected))

	newPosts, err := p.dedup.FilterNew(ctx, parsed.Posts)
	if err != nil {
		return fmt.Errorf("dedupe: %w", err)
	}
	report.NewPosts = len(newPosts)
	p.metrics.NewPosts.Add(float64(report.NewPosts))

	if err := p.store.SavePosts(ctx, newPosts); err != nil {
		return fmt.Errorf("save posts: %w", err)
	}

	images := imagesOf(newPosts, parsed.Images)
	if err := p.store.SaveImages(ctx, images); err != nil {
		return fmt.Errorf("save images: %w", err)
	}
	report.Images = len(images)

	results, failures := ExtractClassifications(ctx, p.classifier, newPosts)
	report.Classified = len(results)
	report.ClassifyFailures = failures
	p.metrics.Classifications.WithLabelValues("success").Add(float64(len(results)))
	p.metrics.Classifications.WithLabelValues("failure").Add(float64(failures))

	if err := p.store.SaveClassifications(ctx, results); err != nil {
		return fmt.Errorf("save classifications: %w", err)
	}

	for _, r := range results {
		if r.IsRelevant() {
			report.Leads++
		}
	}
	p.metrics.LeadsFound.Add(float64(report.Leads))

	sent, err := p.notifier.NotifyLeads(ctx, group.URL, results)
	p.metrics.LeadsPublished.Add(float64(sent))
	if err != nil {
		logrus.Warnf("Failed to publish leads for %s: %v", group.URL, err)
	}

	return nil
}

// recordRun writes a run log row when the store keeps one
func (p *Pipeline) recordRun(ctx context.Context, cutoff string, report GroupReport) {
	recorder, ok := p.store.(storage.RunRecorder)
	if !ok {
		return
	}
	run := &models.RunLog{
		GroupURL:        report.GroupURL,
		Cutoff:          cutoff,
		Fetched:         report.Fetched,
		Rejected:        report.Rejected,
		NewPosts:        report.NewPosts,
		Classified:      report.Classified,
		ClassifyFailure: report.ClassifyFailures,
		Status:          report.Status(),
		ErrorMsg:        report.Error,
		DurationMillis:  report.Duration.Milliseconds(),
	}
	if err := recorder.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		logrus.Errorf("Failed to record run for %s: %v", report.GroupURL, err)
	}
}

// imagesOf keeps the images that belong to posts, once per image id
func imagesOf(posts []models.Post, images []models.Image) []models.Image {
	ids := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		ids[p.NativeID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(images))
	var out []models.Image
	for _, img := range images {
		if _, ok := ids[img.PostNativeID]; !ok {
			continue
		}
		if _, dup := seen[img.ImageID]; dup {
			continue
		}
		seen[img.ImageID] = struct{}{}
		out = append(out, img)
	}
	return out
}
