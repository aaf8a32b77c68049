package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/orgauth/identity-service/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrPoolClosed is returned for jobs submitted to, or abandoned by, a closed pool.
var ErrPoolClosed = errors.New("hash pool closed")

// SyncHasher is the blocking, CPU-bound hasher the pool runs on its workers.
type SyncHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type jobKind int

const (
	jobHash jobKind = iota
	jobVerify
)

func (k jobKind) String() string {
	if k == jobHash {
		return "hash"
	}
	return "verify"
}

type job struct {
	kind     jobKind
	password string
	hash     string
	result   chan<- jobResult
}

type jobResult struct {
	hash string
	ok   bool
	err  error
}

// HashPool runs password hashing on a fixed set of workers so that bursts of
// logins cannot saturate every CPU serving requests. It satisfies ports.PasswordHasher.
type HashPool struct {
	jobs    chan job
	hasher  SyncHasher
	workers int
	log     zerolog.Logger

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewHashPool creates a HashPool with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewHashPool(numWorkers int, hasher SyncHasher, log zerolog.Logger) *HashPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &HashPool{
		jobs:    make(chan job, channelBuffer),
		hasher:  hasher,
		workers: numWorkers,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled or Close is called.
func (p *HashPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
}

// Close stops the workers and waits for in-flight jobs to finish.
func (p *HashPool) Close() {
	p.closeOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}

// Hash returns a salted hash of password computed on a pool worker.
func (p *HashPool) Hash(ctx context.Context, password string) (string, error) {
	res, err := p.submit(ctx, job{kind: jobHash, password: password})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

// Verify checks password against hash on a pool worker. A mismatch or a
// malformed hash yields (false, nil).
func (p *HashPool) Verify(ctx context.Context, password, hash string) (bool, error) {
	res, err := p.submit(ctx, job{kind: jobVerify, password: password, hash: hash})
	if err != nil {
		return false, err
	}
	return res.ok, nil
}

func (p *HashPool) submit(ctx context.Context, j job) (jobResult, error) {
	result := make(chan jobResult, 1)
	j.result = result

	select {
	case <-p.done:
		return jobResult{}, ErrPoolClosed
	default:
	}

	select {
	case p.jobs <- j:
		metrics.HashQueueDepth.Set(float64(len(p.jobs)))
	case <-ctx.Done():
		return jobResult{}, ctx.Err()
	case <-p.done:
		return jobResult{}, ErrPoolClosed
	}

	select {
	case res := <-result:
		return res, nil
	case <-ctx.Done():
		return jobResult{}, ctx.Err()
	case <-p.done:
		return jobResult{}, ErrPoolClosed
	}
}

func (p *HashPool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case j := <-p.jobs:
			metrics.HashQueueDepth.Set(float64(len(p.jobs)))
			j.result <- p.run(id, j)
		}
	}
}

func (p *HashPool) run(id int, j job) jobResult {
	start := time.Now()
	defer func() {
		metrics.HashDuration.WithLabelValues(j.kind.String()).Observe(time.Since(start).Seconds())
	}()

	switch j.kind {
	case jobHash:
		hash, err := p.hasher.Hash(j.password)
		if err != nil {
			p.log.Debug().Err(err).Int("worker_id", id).Msg("password hashing failed")
		}
		return jobResult{hash: hash, err: err}
	default:
		return jobResult{ok: p.hasher.Verify(j.password, j.hash)}
	}
}
