package main

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const (
	progressUpdateInterval = 250 * time.Millisecond
	clearLineSequence      = "\r\033[K"
)

// ProgressPrinter keeps a single status line updated with the elapsed or
// remaining scan time and the number of devices seen.
//
// Usage:
//
//	p := NewProgressPrinter(w, "Scanning", 10*time.Second, ctrl.PeerCount)
//	p.Start()
//	defer p.Stop()
//
// A zero duration counts up. Stop clears the line and may be called more than
// once; a stopped printer cannot be restarted.
type ProgressPrinter struct {
	w        io.Writer
	prefix   string
	duration time.Duration
	count    func() int

	once     sync.Once
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

// NewProgressPrinter creates a progress printer writing to w.
func NewProgressPrinter(w io.Writer, prefix string, duration time.Duration, count func() int) *ProgressPrinter {
	return &ProgressPrinter{
		w:        w,
		prefix:   prefix,
		duration: duration,
		count:    count,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressPrinter) Start() {
	p.once.Do(func() {
		start := time.Now()
		p.print(0)

		go func() {
			defer close(p.done)
			ticker := time.NewTicker(progressUpdateInterval)
			defer ticker.Stop()

			for {
				select {
				case <-p.stopChan:
					return
				case <-ticker.C:
					p.print(time.Since(start))
				}
			}
		}()
	})
}

// Stop terminates the update goroutine and clears the status line.
func (p *ProgressPrinter) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
		// never started: nothing to wait for
		p.once.Do(func() { close(p.done) })
		<-p.done
		fmt.Fprint(p.w, clearLineSequence)
	})
}

func (p *ProgressPrinter) print(elapsed time.Duration) {
	var clock string
	if p.duration > 0 {
		remaining := p.duration - elapsed
		if remaining < 0 {
			remaining = 0
		}
		// Round to the nearest second, e.g. 3.7s -> 4s
		clock = fmt.Sprintf("%ds left", int(remaining.Seconds()+0.5))
	} else {
		clock = fmt.Sprintf("%ds", int(elapsed.Seconds()))
	}
	fmt.Fprintf(p.w, "%s%s... %s, %d device(s)", clearLineSequence, p.prefix, clock, p.count())
}
