package collagelib

import (
	"context"

	"github.com/awused/collage-wallpapers/util/log"
	"golang.org/x/sync/errgroup"
)

// RunPipelines runs every pipeline until ctx is cancelled or one of them
// fails. The first failure stops every other pipeline and is returned once
// they have all exited, later failures are dropped.
func RunPipelines(ctx context.Context, pipelines []*MonitorPipeline) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, p := range pipelines {
		p := p
		g.Go(func() error {
			err := p.Run(ctx)
			if err != nil {
				log.Printf("Monitor %d failed: %v", p.Index(), err)
			}
			return err
		})
	}

	return g.Wait()
}
