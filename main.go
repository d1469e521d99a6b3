/*
Demo binary for the travaso pipeline: runs the conversions a manifest
describes, or a synthetic testbed batch when no manifest is given.
*/
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/spaghettifunk/travaso/pipeline/assets"
	"github.com/spaghettifunk/travaso/pipeline/config"
	"github.com/spaghettifunk/travaso/pipeline/core"
	"github.com/spaghettifunk/travaso/pipeline/datauri"
	"github.com/spaghettifunk/travaso/pipeline/pacing"
	"github.com/spaghettifunk/travaso/pipeline/transcode"
	"github.com/spaghettifunk/travaso/testbed"
)

func main() {
	configPath := flag.String("config", "", "path to the pipeline settings toml")
	manifestPath := flag.String("manifest", "", "path to a conversion manifest toml")
	watch := flag.Bool("watch", false, "re-run conversions when watched buffer files change")
	seed := flag.Uint64("seed", 42, "testbed generator seed")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		core.LogFatal(err.Error())
	}

	pool, agent, err := settings.Apply()
	if err != nil {
		core.LogFatal(err.Error())
	}
	defer pool.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer cancel()

	// Stand in for the host frame loop: a budgeted agent needs someone
	// ticking it or suspended work never resumes.
	if budgeted, ok := agent.(*pacing.BudgetedAgent); ok {
		go func() {
			ticker := time.NewTicker(settings.TickInterval())
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					budgeted.Tick()
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	transcoder := transcode.New(
		transcode.WithExecutor(pool),
		transcode.WithGrain(settings.Grain),
	)

	if *manifestPath == "" {
		runTestbed(ctx, transcoder, *seed)
		return
	}

	resolver := datauri.NewResolver(
		datauri.WithPool(pool),
		datauri.WithDecodeRate(settings.DecodeRate()),
	)

	manager, err := assets.NewManager(resolver)
	if err != nil {
		core.LogFatal(err.Error())
	}
	defer manager.Close()

	manifest, err := assets.LoadManifest(*manifestPath)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := runManifest(ctx, transcoder, manager, manifest); err != nil {
		core.LogFatal(err.Error())
	}

	if !*watch {
		return
	}

	core.LogInfo("watching buffer files, ctrl-c to stop")
	for {
		select {
		case inv, ok := <-manager.Invalidations():
			if !ok {
				return
			}
			core.LogInfo("buffer %q changed (%s), re-running", inv.Name, inv.Path)
			if err := runManifest(ctx, transcoder, manager, manifest); err != nil {
				core.LogError(err.Error())
			}
		case <-ctx.Done():
			return
		}
	}
}

func runManifest(ctx context.Context, transcoder *transcode.Transcoder, manager *assets.Manager, manifest *assets.Manifest) error {
	sources, err := manager.Resolve(ctx, manifest)
	if err != nil {
		return err
	}

	for _, src := range sources {
		if src.Image != nil {
			core.LogInfo("buffer %q embeds a %s image %dx%d", src.Name, src.Image.Format, src.Image.Width, src.Image.Height)
		}
	}

	for _, conv := range manifest.Conversions {
		job, err := manifest.BuildJob(conv, sources)
		if err != nil {
			return err
		}
		if err := runJob(ctx, transcoder, conv.Name, job); err != nil {
			return err
		}
	}

	return nil
}

func runTestbed(ctx context.Context, transcoder *transcode.Transcoder, seed uint64) {
	core.LogInfo("no manifest given, running testbed scenarios (seed %d)", seed)

	for _, sc := range testbed.Build(seed) {
		if err := runJob(ctx, transcoder, sc.Name, sc.Job); err != nil {
			core.LogError("%s: %s", sc.Name, err.Error())
			return
		}
	}
}

func runJob(ctx context.Context, transcoder *transcode.Transcoder, name string, job transcode.Job) error {
	clock := core.NewClock()
	clock.Start()

	res, err := transcoder.Run(ctx, job)
	if err != nil {
		return err
	}

	clock.Update()

	core.LogInfo("%s: %d %s element(s) in %s (out hash %016x)",
		name, res.Elements, job.Semantics, clock.Elapsed(), xxhash.Sum64(job.Dst.Data))
	if res.Extents != nil {
		e := res.Extents
		core.LogInfo("%s: extents min(%.2f %.2f %.2f) max(%.2f %.2f %.2f)",
			name, e.Min.X, e.Min.Y, e.Min.Z, e.Max.X, e.Max.Y, e.Max.Z)
	}

	return nil
}
