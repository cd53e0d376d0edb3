package collagelib

import (
	"context"
	"sort"
	"sync"

	"github.com/awused/collage-wallpapers/util/log"
	"golang.org/x/sync/errgroup"
)

// SourceImage is an original image that can be placed in a collage.
type SourceImage struct {
	Path   string
	Width  int
	Height int
	Type   ImageType
}

func (s SourceImage) Dimensions() Dimensions {
	return Dimensions{Width: s.Width, Height: s.Height}
}

// Catalog holds the metadata of every usable source image. It is read only
// once built and safe to share between monitors.
type Catalog struct {
	images map[string]SourceImage
}

// NewCatalog builds a catalog from already resolved images.
func NewCatalog(images ...SourceImage) *Catalog {
	c := &Catalog{images: make(map[string]SourceImage, len(images))}
	for _, img := range images {
		c.images[img.Path] = img
	}
	return c
}

func (c *Catalog) Lookup(path string) (SourceImage, bool) {
	img, ok := c.images[path]
	return img, ok
}

func (c *Catalog) Len() int {
	return len(c.images)
}

// ResolveImage probes the type of the file at path and reads its dimensions.
func ResolveImage(path string) (SourceImage, error) {
	t, err := ProbeImageType(path)
	if err != nil {
		return SourceImage{}, err
	}

	conf, err := t.DecodeConfig(path)
	if err != nil {
		return SourceImage{}, err
	}

	return SourceImage{Path: path, Width: conf.Width, Height: conf.Height, Type: t}, nil
}

// CatalogResult is the outcome of BuildCatalog.
type CatalogResult struct {
	Catalog *Catalog
	// Monitors with every unusable path removed, in the same order as the input
	Monitors []MonitorSpec
	// Paths that could not be identified or read, sorted
	Excluded []string
}

// BuildCatalog resolves every path referenced by monitors, using at most
// workers goroutines. Paths that can't be identified are dropped from the
// monitors that reference them with a warning, this is never fatal.
func BuildCatalog(
	ctx context.Context, monitors []MonitorSpec, workers int) (*CatalogResult, error) {
	unique := make(map[string]struct{})
	for _, m := range monitors {
		for _, p := range m.Wallpapers {
			unique[p] = struct{}{}
		}
	}

	var mu sync.Mutex
	resolved := make(map[string]SourceImage, len(unique))
	failed := make(map[string]struct{})

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for p := range unique {
		p := p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			img, err := ResolveImage(p)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf(
					"[WARN] [%s] could not be read or identified, "+
						"it will not be included in source images: %v", p, err)
				failed[p] = struct{}{}
				return nil
			}
			resolved[p] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &CatalogResult{
		Catalog:  &Catalog{images: resolved},
		Monitors: make([]MonitorSpec, len(monitors)),
	}

	for i, m := range monitors {
		kept := make([]string, 0, len(m.Wallpapers))
		for _, p := range m.Wallpapers {
			if _, ok := resolved[p]; ok {
				kept = append(kept, p)
			}
		}
		m.Wallpapers = kept
		res.Monitors[i] = m
	}

	for p := range failed {
		res.Excluded = append(res.Excluded, p)
	}
	sort.Strings(res.Excluded)

	log.Debugf("Catalogued %d images, excluded %d", len(resolved), len(failed))
	return res, nil
}
