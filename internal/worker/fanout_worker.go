package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"darra/config"
	"darra/internal/repository"
	"darra/internal/service"
)

// Pool consumes the outbox table: queued references are fed to fanout
// workers, and a sweep ticker re-arms stale or partially completed rows.
// Because claiming is a conditional update, any number of pools across
// processes can run safely.
type Pool struct {
	cfg    *config.WorkerConfig
	outbox *repository.OutboxRepository
	fanout *service.FanoutService

	wg   sync.WaitGroup
	refs chan string
}

func NewPool(cfg *config.WorkerConfig, outbox *repository.OutboxRepository, fanout *service.FanoutService) *Pool {
	return &Pool{
		cfg:    cfg,
		outbox: outbox,
		fanout: fanout,
		refs:   make(chan string, cfg.Count*2),
	}
}

// Start launches the workers, the poller, and the sweep. It returns
// immediately; Stop waits for in-flight work.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.cfg.Count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.wg.Add(1)
	go p.poll(ctx)
	p.wg.Add(1)
	go p.sweep(ctx)
	log.Printf("[Worker] %d fanout workers started", p.cfg.Count)
}

func (p *Pool) Stop() {
	p.wg.Wait()
}

// Enqueue nudges the pool about a freshly queued reference so the webhook
// path does not wait for the next poll. Durability comes from the outbox
// row, not from this channel.
func (p *Pool) Enqueue(reference string) {
	select {
	case p.refs <- reference:
	default:
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ref := <-p.refs:
			if err := p.fanout.Run(ref); err != nil {
				log.Printf("[Worker %d] fanout %s: %v", id, ref, err)
			}
		}
	}
}

func (p *Pool) poll(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refs, err := p.outbox.ListQueued(p.cfg.Count * 4)
			if err != nil {
				log.Printf("[Worker] poll outbox: %v", err)
				continue
			}
			for _, ref := range refs {
				select {
				case p.refs <- ref:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (p *Pool) sweep(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.outbox.RequeueStale(p.cfg.VisibilityTimeout, p.cfg.MaxAttempts)
			if err != nil {
				log.Printf("[Worker] sweep: %v", err)
			} else if n > 0 {
				log.Printf("[Worker] re-queued %d outbox rows", n)
			}
			p.fanout.RetryMissingAssets(50)
		}
	}
}
