package screenshot

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeLauncher starts a headless Chrome per capture.
type ChromeLauncher struct {
	ExecPath string
	Width    int
	Height   int
	// Settle bounds the wait for the network idle lifecycle event.
	Settle time.Duration
}

func (l ChromeLauncher) Launch(ctx context.Context) (Browser, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.DisableGPU, chromedp.NoSandbox)
	if l.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.ExecPath))
	}
	if l.Width > 0 && l.Height > 0 {
		opts = append(opts, chromedp.WindowSize(l.Width, l.Height))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	// the first Run starts the browser process
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, err
	}
	return &chromeBrowser{ctx: tabCtx, cancel: func() { tabCancel(); allocCancel() }, settle: l.Settle}, nil
}

type chromeBrowser struct {
	ctx    context.Context
	cancel context.CancelFunc
	settle time.Duration
}

func (b *chromeBrowser) Capture(ctx context.Context, target, selector string) ([]byte, error) {
	runCtx, stop := context.WithCancel(b.ctx)
	defer stop()
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-runCtx.Done():
		}
	}()

	idle := make(chan struct{}, 1)
	chromedp.ListenTarget(runCtx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})

	var nodes []*cdp.Node
	var png []byte
	err := chromedp.Run(runCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(target),
		waitIdle(idle, b.settle),
		chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTargetMissing, selector)
	}
	if err := chromedp.Run(runCtx, chromedp.Screenshot(selector, &png, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return nil, err
	}
	return png, nil
}

func (b *chromeBrowser) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	return nil
}

// waitIdle blocks until the page reports network idle or settle elapses.
func waitIdle(idle <-chan struct{}, settle time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		if settle <= 0 {
			settle = 500 * time.Millisecond
		}
		timer := time.NewTimer(settle)
		defer timer.Stop()
		select {
		case <-idle:
			return nil
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
