package crawler

import (
	"context"
	"sync"
)

func (s *Session) linkWorker(ctx context.Context, limiter *linkLimiter, jobs <-chan linkJob, results chan<- linkResult, wg *sync.WaitGroup) {
	defer wg.Done()
	for job := range jobs {
		if !limiter.wait(ctx) {
			results <- linkResult{index: job.index, skipped: true}
			continue
		}
		rec, err := s.processLink(ctx, job.url)
		if err != nil && ctx.Err() != nil {
			results <- linkResult{index: job.index, skipped: true}
			continue
		}
		results <- linkResult{index: job.index, record: rec}
	}
}
