package main

import (
	"context"
	"errors"
	"time"

	lib "github.com/awused/collage-wallpapers/lib"
	"github.com/awused/collage-wallpapers/util/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/semaphore"
)

// Everything needed to run the pipelines of every configured monitor.
type session struct {
	configPath string
	conf       *lib.Config
	workDir    *lib.WorkDir
	catalog    *lib.CatalogResult
	schedule   *lib.Schedule
	shared     *lib.Shared
	pipelines  []*lib.MonitorPipeline
}

func seed(c *cli.Context) int64 {
	if c.IsSet(seedFlag) {
		return c.Int64(seedFlag)
	}
	return time.Now().UnixNano()
}

// Builds the catalog without touching the desktop. When files is not empty
// every monitor uses those instead of its configured wallpapers.
func loadCatalog(
	ctx context.Context, conf *lib.Config, files []string) (*lib.CatalogResult, error) {
	specs := conf.MonitorSpecs()

	if len(files) > 0 {
		expanded, err := lib.ExpandWallpapers(files)
		if err != nil {
			return nil, err
		}
		for i := range specs {
			specs[i].Wallpapers = expanded
		}
	}

	return lib.BuildCatalog(ctx, specs, conf.GenerationWorkers)
}

func newSession(ctx context.Context, c *cli.Context, files []string) (*session, error) {
	conf, err := lib.GetConfig()
	if err != nil {
		return nil, err
	}

	s := &session{configPath: c.String(configFlag), conf: conf}

	s.catalog, err = loadCatalog(ctx, conf, files)
	if err != nil {
		return nil, err
	}

	s.workDir, err = lib.OpenWorkDir(conf.TempDirectory)
	if err != nil {
		return nil, err
	}
	// Nothing else can be using these yet
	if err = s.workDir.PurgeAll(); err != nil {
		return nil, err
	}

	backend, err := lib.NewBackend(s.workDir)
	if err != nil {
		return nil, err
	}

	sd := seed(c)
	log.Debugf("Shuffling with seed %d", sd)

	s.schedule = lib.NewSchedule(conf.GlobalDelay(), s.catalog.Monitors)
	s.shared = &lib.Shared{
		Composer: lib.NewComposer(s.catalog.Catalog),
		Backend:  backend,
		WorkDir:  s.workDir,
		Rand:     lib.NewRand(sd),
		Schedule: s.schedule,
		Output:   conf.Output(),
		Workers:  semaphore.NewWeighted(int64(conf.GenerationWorkers)),
	}

	for _, m := range s.catalog.Monitors {
		if len(m.Wallpapers) == 0 {
			log.Printf("[WARN] Skipping monitor %d, it has no usable wallpapers", m.Index)
			continue
		}
		s.pipelines = append(s.pipelines, lib.NewMonitorPipeline(m, s.shared))
	}

	if len(s.pipelines) == 0 {
		return nil, errors.New("No monitors have any usable wallpapers")
	}
	return s, nil
}

func (s *session) pipeline(index int) *lib.MonitorPipeline {
	for _, p := range s.pipelines {
		if p.Index() == index {
			return p
		}
	}
	return nil
}

// Only the transition delays can change while running.
func (s *session) reload() {
	if err := lib.ReloadSchedule(s.configPath, s.schedule); err != nil {
		log.Printf("[WARN] Failed to reload config, keeping the old delays: %v", err)
	}
}
