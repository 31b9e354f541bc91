package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/sefakor20/kingdomvitals-insights/internal/adapters/mq/queue"
	"github.com/sefakor20/kingdomvitals-insights/internal/adapters/mq/worker"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/assess"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
	logging "github.com/sefakor20/kingdomvitals-insights/pkg/logger"
)

// Mock implementations for testing.
type mockQueue struct {
	jobChan chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobChan: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job {
	return mq.jobChan
}

func (mq *mockQueue) Close() error {
	close(mq.jobChan)
	return nil
}

func (mq *mockQueue) addJob(j queue.Job) {
	mq.jobChan <- j
}

type mockAssessor struct {
	errors map[string]error
	mu     sync.RWMutex
}

func newMockAssessor() *mockAssessor {
	return &mockAssessor{errors: make(map[string]error)}
}

func (ma *mockAssessor) Compute(in assess.Input, asOf time.Time) (assess.Assessment, error) {
	ma.mu.RLock()
	defer ma.mu.RUnlock()

	if err, exists := ma.errors[in.SubjectID()]; exists {
		return assess.Assessment{}, err
	}
	return assess.Assessment{
		SubjectID:   in.SubjectID(),
		SubjectType: in.SubjectType(),
		BranchID:    in.Branch(),
		Domain:      in.Domain(),
		Score:       50,
		ComputedAt:  asOf,
	}, nil
}

func (ma *mockAssessor) setError(subjectID string, err error) {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	ma.errors[subjectID] = err
}

type mockSink struct {
	stored map[string]assess.Assessment
	errors map[string]error
	mu     sync.RWMutex
}

func newMockSink() *mockSink {
	return &mockSink{
		stored: make(map[string]assess.Assessment),
		errors: make(map[string]error),
	}
}

func (ms *mockSink) PutAssessment(ctx context.Context, a assess.Assessment) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if err, exists := ms.errors[a.SubjectID]; exists {
		return err
	}
	ms.stored[a.SubjectID] = a
	return nil
}

func (ms *mockSink) setError(subjectID string, err error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.errors[subjectID] = err
}

func (ms *mockSink) get(subjectID string) (assess.Assessment, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	a, exists := ms.stored[subjectID]
	return a, exists
}

func churnJob(runID, memberID string) queue.Job {
	return queue.Job{
		RunID:    runID,
		BranchID: "branch-1",
		Input: assess.ChurnInput{Member: model.MemberSnapshot{
			MemberID: memberID,
			BranchID: "branch-1",
		}},
		AsOf: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init("text")

		q := newMockQueue()
		assessor := newMockAssessor()
		sink := newMockSink()

		convey.Convey("When creating a worker with default options", func() {
			w := worker.NewInMemoryWorker(q, assessor, sink)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When creating a worker with custom options", func() {
			w := worker.NewInMemoryWorker(q, assessor, sink, worker.WithName("test-worker"))

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(q, assessor, sink)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go w.Run(ctx)

			// Give worker time to start
			time.Sleep(10 * time.Millisecond)

			convey.Convey("And when processing jobs", func() {
				q.addJob(churnJob("run-1", "member-1"))

				// Give worker time to process
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the assessment is persisted", func() {
					a, stored := sink.get("member-1")
					convey.So(stored, convey.ShouldBeTrue)
					convey.So(a.Domain, convey.ShouldEqual, types.DomainChurnRisk)
					convey.So(a.BranchID, convey.ShouldEqual, "branch-1")
				})
			})

			convey.Convey("And when assessment fails", func() {
				assessor.setError("member-2", errors.New("assessment error"))
				q.addJob(churnJob("run-1", "member-2"))

				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then nothing is persisted", func() {
					_, stored := sink.get("member-2")
					convey.So(stored, convey.ShouldBeFalse)
				})
			})

			convey.Convey("And when the store write fails", func() {
				sink.setError("member-3", errors.New("store error"))
				q.addJob(churnJob("run-1", "member-3"))

				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then nothing is persisted", func() {
					_, stored := sink.get("member-3")
					convey.So(stored, convey.ShouldBeFalse)
				})
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()

				err := w.Shutdown(shutdownCtx)

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When context is cancelled", func() {
			w := worker.NewInMemoryWorker(q, assessor, sink)
			ctx, cancel := context.WithCancel(context.Background())

			go w.Run(ctx)
			time.Sleep(10 * time.Millisecond)
			cancel()
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then the worker stops without processing further jobs", func() {
				q.addJob(churnJob("run-2", "member-4"))
				time.Sleep(50 * time.Millisecond)
				_, stored := sink.get("member-4")
				convey.So(stored, convey.ShouldBeFalse)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a new WorkerPool", t, func() {
		_ = logging.Init("text")

		q := newMockQueue()
		assessor := newMockAssessor()
		sink := newMockSink()

		convey.Convey("When creating a worker pool with default count", func() {
			pool := worker.NewPool(0, q, assessor, sink)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(pool, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When starting a worker pool", func() {
			pool := worker.NewPool(2, q, assessor, sink)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pool.Start(ctx)
			time.Sleep(20 * time.Millisecond)

			convey.Convey("And when processing multiple jobs", func() {
				for i := 1; i <= 3; i++ {
					q.addJob(churnJob("run-1", fmt.Sprintf("member-%d", i)))
				}

				time.Sleep(100 * time.Millisecond)

				convey.Convey("Then all jobs should be processed", func() {
					for i := 1; i <= 3; i++ {
						_, stored := sink.get(fmt.Sprintf("member-%d", i))
						convey.So(stored, convey.ShouldBeTrue)
					}
				})
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
				defer shutdownCancel()

				err := pool.Shutdown(shutdownCtx)

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})

			convey.Convey("And when stopping the pool with queued work", func() {
				q.addJob(churnJob("run-1", "member-9"))

				started := time.Now()
				pool.Stop()

				convey.Convey("Then queued work drains and Stop returns promptly", func() {
					convey.So(time.Since(started), convey.ShouldBeLessThan, time.Second)
					_, stored := sink.get("member-9")
					convey.So(stored, convey.ShouldBeTrue)
				})
			})
		})
	})
}

func TestWorkerConcurrency(t *testing.T) {
	convey.Convey("Given a worker pool with multiple workers", t, func() {
		_ = logging.Init("text")

		mq := &mockQueue{jobChan: make(chan queue.Job, 200)}
		assessor := newMockAssessor()
		sink := newMockSink()

		pool := worker.NewPool(4, mq, assessor, sink)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pool.Start(ctx)
		time.Sleep(20 * time.Millisecond)

		convey.Convey("When processing many concurrent jobs", func() {
			const jobCount = 100
			var wg sync.WaitGroup

			for i := 0; i < 5; i++ {
				wg.Add(1)
				go func(producer int) {
					defer wg.Done()
					for j := 0; j < jobCount/5; j++ {
						mq.addJob(churnJob("run-1", fmt.Sprintf("member-%d-%d", producer, j)))
					}
				}(i)
			}

			wg.Wait()
			time.Sleep(200 * time.Millisecond)

			convey.Convey("Then every job lands in the sink", func() {
				processed := 0
				for i := 0; i < 5; i++ {
					for j := 0; j < jobCount/5; j++ {
						if _, stored := sink.get(fmt.Sprintf("member-%d-%d", i, j)); stored {
							processed++
						}
					}
				}
				convey.So(processed, convey.ShouldEqual, jobCount)
			})
		})
	})
}
