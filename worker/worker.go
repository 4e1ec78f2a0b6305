// Package worker drains background jobs from Redis: source-text fetches for
// chapters imported from a table of contents, and chapter translations. The
// whole package is optional; without a Redis URL the server runs everything
// inline.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/semaphore"

	"novelweaver/crawler"
	"novelweaver/logutils"
	"novelweaver/models"
	"novelweaver/store"
	"novelweaver/translator"
)

const (
	fetchQueueKey       = "chapter_fetch_queue"
	translationQueueKey = "translation_queue"
	retryQueueKey       = "retry_queue"
	maxRetries          = 5
	maxConcurrent       = 10
)

type Job interface {
	GetRetries() int
	IncrementRetries()
}

// FetchJob pulls the source text for a chapter that only has a URL so far.
type FetchJob struct {
	WorkspaceID string `json:"workspace_id"`
	ChapterID   string `json:"chapter_id"`
	URL         string `json:"url"`
	Selector    string `json:"selector"`
	Retries     int    `json:"retries"`
}

func (j *FetchJob) GetRetries() int   { return j.Retries }
func (j *FetchJob) IncrementRetries() { j.Retries++ }

// TranslationJob runs one chapter through the translation orchestrator.
type TranslationJob struct {
	WorkspaceID string `json:"workspace_id"`
	ChapterID   string `json:"chapter_id"`
	Retries     int    `json:"retries"`
}

func (j *TranslationJob) GetRetries() int   { return j.Retries }
func (j *TranslationJob) IncrementRetries() { j.Retries++ }

type Worker struct {
	Redis        *redis.Client
	Store        *store.Store
	Crawler      *crawler.Crawler
	Orchestrator *translator.Orchestrator
	semaphore    *semaphore.Weighted
}

func NewWorker(rdb *redis.Client, st *store.Store, cr *crawler.Crawler, orch *translator.Orchestrator) *Worker {
	return &Worker{
		Redis:        rdb,
		Store:        st,
		Crawler:      cr,
		Orchestrator: orch,
		semaphore:    semaphore.NewWeighted(maxConcurrent),
	}
}

func (w *Worker) Start(ctx context.Context) {
	go w.processFetchQueue(ctx)
	go w.processQueue(ctx, translationQueueKey, w.processTranslation)
	go w.processRetryQueue(ctx)
}

func (w *Worker) EnqueueFetch(workspaceID, chapterID, url, selector string) error {
	data, err := json.Marshal(FetchJob{
		WorkspaceID: workspaceID,
		ChapterID:   chapterID,
		URL:         url,
		Selector:    selector,
	})
	if err != nil {
		return fmt.Errorf("marshalling fetch job: %w", err)
	}
	return w.enqueue(fetchQueueKey, string(data))
}

func (w *Worker) EnqueueTranslation(workspaceID, chapterID string) error {
	data, err := json.Marshal(TranslationJob{
		WorkspaceID: workspaceID,
		ChapterID:   chapterID,
	})
	if err != nil {
		return fmt.Errorf("marshalling translation job: %w", err)
	}
	return w.enqueue(translationQueueKey, string(data))
}

func (w *Worker) processQueue(ctx context.Context, queueKey string, processor func(context.Context, string) error) {
	for {
		select {
		case <-ctx.Done():
			logutils.Log.WithField("queue", queueKey).Info("stopping queue processing")
			return
		default:
			result, err := w.Redis.BLPop(ctx, 5*time.Second, queueKey).Result()
			if err == redis.Nil {
				continue
			} else if err != nil {
				if ctx.Err() != nil {
					return
				}
				logutils.Log.WithError(err).WithField("queue", queueKey).Error("popping job")
				continue
			}

			if err := processor(ctx, result[1]); err != nil {
				logutils.Log.WithError(err).WithField("queue", queueKey).Error("processing job")
			}
		}
	}
}

// processFetchQueue drains fetch jobs in semaphore-bounded batches so a bulk
// TOC import does not hammer the source site all at once.
func (w *Worker) processFetchQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logutils.Log.Info("stopping fetch queue processing")
			return
		default:
			jobs, err := w.Redis.LRange(ctx, fetchQueueKey, 0, maxConcurrent-1).Result()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logutils.Log.WithError(err).Error("reading fetch queue")
				time.Sleep(time.Second)
				continue
			}
			if len(jobs) == 0 {
				time.Sleep(time.Second)
				continue
			}

			var wg sync.WaitGroup
			for _, raw := range jobs {
				wg.Add(1)
				go func(jobData string) {
					defer wg.Done()
					if err := w.semaphore.Acquire(ctx, 1); err != nil {
						return
					}
					defer w.semaphore.Release(1)

					if err := w.processFetch(ctx, jobData); err != nil {
						logutils.Log.WithError(err).Error("processing fetch job")
					}
				}(raw)
			}
			wg.Wait()

			if _, err := w.Redis.LTrim(ctx, fetchQueueKey, int64(len(jobs)), -1).Result(); err != nil {
				logutils.Log.WithError(err).Error("trimming fetch queue")
			}
		}
	}
}

func (w *Worker) processFetch(ctx context.Context, jobData string) error {
	var job FetchJob
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		return fmt.Errorf("unmarshalling fetch job: %w", err)
	}

	html, err := w.Crawler.FetchHTML(ctx, job.URL)
	if err != nil {
		logutils.Log.WithError(err).WithField("url", job.URL).Warn("fetch failed")
		return w.enqueueForRetry(&job)
	}

	text, err := crawler.ExtractText(html, job.Selector)
	if err != nil {
		logutils.Log.WithError(err).WithField("url", job.URL).Warn("extract failed")
		return w.enqueueForRetry(&job)
	}

	words := models.CountWords(text)
	if !w.Store.UpdateChapter(job.WorkspaceID, job.ChapterID, models.ChapterPatch{
		SourceText:      &text,
		SourceWordCount: &words,
	}) {
		logutils.Log.WithFields(logutils.Fields{
			"workspace": job.WorkspaceID,
			"chapter":   job.ChapterID,
		}).Warn("chapter gone before fetch completed")
	}
	return nil
}

func (w *Worker) processTranslation(ctx context.Context, jobData string) error {
	var job TranslationJob
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		return fmt.Errorf("unmarshalling translation job: %w", err)
	}

	err := w.Orchestrator.TranslateChapter(ctx, job.WorkspaceID, job.ChapterID)
	if err == translator.ErrAlreadyTranslating {
		return nil
	}
	if err != nil {
		// A failed translation stays in error status until someone triggers
		// it again; only fetch jobs go through the retry queue.
		logutils.Log.WithError(err).WithFields(logutils.Fields{
			"workspace": job.WorkspaceID,
			"chapter":   job.ChapterID,
		}).Error("translation job failed")
	}
	return nil
}

func (w *Worker) processRetryQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logutils.Log.Info("stopping retry queue processing")
			return
		default:
			result, err := w.Redis.BLPop(ctx, 30*time.Second, retryQueueKey).Result()
			if err == redis.Nil {
				continue
			} else if err != nil {
				if ctx.Err() != nil {
					return
				}
				logutils.Log.WithError(err).Error("popping retry job")
				continue
			}

			var raw map[string]interface{}
			if err := json.Unmarshal([]byte(result[1]), &raw); err != nil {
				logutils.Log.WithError(err).Error("unmarshalling retry job")
				continue
			}

			// Fetch jobs carry a url field, translation jobs do not.
			if _, ok := raw["url"]; ok {
				if err := w.processFetch(ctx, result[1]); err != nil {
					logutils.Log.WithError(err).Error("retrying fetch job")
				}
			} else {
				if err := w.processTranslation(ctx, result[1]); err != nil {
					logutils.Log.WithError(err).Error("retrying translation job")
				}
			}
		}
	}
}

func (w *Worker) enqueueForRetry(job Job) error {
	job.IncrementRetries()
	if job.GetRetries() >= maxRetries {
		logutils.Log.WithField("retries", job.GetRetries()).Warn("job dropped after max retries")
		return nil
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshalling retry job: %w", err)
	}
	return w.enqueue(retryQueueKey, string(data))
}

func (w *Worker) enqueue(queueKey, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.Redis.RPush(ctx, queueKey, value).Err(); err != nil {
		return fmt.Errorf("enqueueing to %s: %w", queueKey, err)
	}
	return nil
}
