package pipeline

import (
	"context"

	"delica-crawler/internal/crawler"
	"delica-crawler/internal/repair"
)

// TraversalStep runs the resumable catalog crawl.
type TraversalStep struct {
	Crawler *crawler.Crawler
}

// Do runs the crawl until the queue drains or a fatal error occurs.
func (s *TraversalStep) Do(ctx context.Context) error { return s.Crawler.Run(ctx) }

// Name returns the step name.
func (s *TraversalStep) Name() string { return "traversal" }

// ImagesStep downloads diagram images that are not yet stored locally.
type ImagesStep struct {
	Crawler *crawler.Crawler
}

// Do downloads missing diagram images.
func (s *ImagesStep) Do(ctx context.Context) error { return s.Crawler.DownloadImages(ctx) }

// Name returns the step name.
func (s *ImagesStep) Name() string { return "images" }

// SharingStep runs the cross-diagram part sharing repair.
type SharingStep struct {
	Pass *repair.SharingPass
}

// Do runs the sharing repair pass.
func (s *SharingStep) Do(ctx context.Context) error { return s.Pass.Run(ctx) }

// Name returns the step name.
func (s *SharingStep) Name() string { return "sharing-repair" }

// ReplacementStep runs the replacement-row merge repair.
type ReplacementStep struct {
	Pass *repair.ReplacementPass
}

// Do runs the replacement-merge repair pass.
func (s *ReplacementStep) Do(ctx context.Context) error { return s.Pass.Run(ctx) }

// Name returns the step name.
func (s *ReplacementStep) Name() string { return "replacement-merge" }
