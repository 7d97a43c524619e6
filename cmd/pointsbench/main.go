// Command pointsbench drives a point collection through a number of frames
// on a headless device and reports how much GPU work each frame caused.
//
// Usage:
//
//	pointsbench -n 100000 -frames 120 -churn 0.01 -mode 2d
//	pointsbench -config points.toml -backend backend.toml -v
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/points"
	"github.com/gogpu/points/backend/wgpu"
	"github.com/gogpu/points/proj"
	"github.com/gogpu/points/shadercache"
)

func main() {
	var (
		count         = flag.Int("n", 10000, "number of points")
		frames        = flag.Int("frames", 60, "frames to render")
		churn         = flag.Float64("churn", 0.01, "fraction of points moved per frame")
		mode          = flag.String("mode", "3d", "scene mode: 3d, 2d, columbus")
		pick          = flag.Bool("pick", false, "render a pick pass every frame")
		configPath    = flag.String("config", "", "collection config (TOML)")
		backendConfig = flag.String("backend", "", "backend config (TOML)")
		verbose       = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		points.SetLogger(l)
		wgpu.SetLogger(l)
	}

	sceneMode, err := parseMode(*mode)
	if err != nil {
		log.Fatal(err)
	}

	cfg := points.DefaultConfig()
	if *configPath != "" {
		if cfg, err = points.LoadConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	bcfg := wgpu.DefaultConfig()
	if *backendConfig != "" {
		if bcfg, err = wgpu.LoadConfig(*backendConfig); err != nil {
			log.Fatal(err)
		}
	}

	if err := run(cfg, bcfg, benchParams{
		count:  *count,
		frames: *frames,
		churn:  *churn,
		mode:   sceneMode,
		pick:   *pick,
	}); err != nil {
		log.Fatal(err)
	}
}

type benchParams struct {
	count  int
	frames int
	churn  float64
	mode   points.SceneMode
	pick   bool
}

func parseMode(s string) (points.SceneMode, error) {
	switch s {
	case "3d":
		return points.Scene3D, nil
	case "2d":
		return points.Scene2D, nil
	case "columbus":
		return points.SceneColumbusView, nil
	default:
		return 0, fmt.Errorf("unknown scene mode %q", s)
	}
}

func run(cfg points.Config, bcfg wgpu.Config, p benchParams) error {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	defer instance.Destroy()

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open adapter: %w", err)
	}
	defer openDev.Device.Destroy()

	device, err := wgpu.New(openDev.Device, openDev.Queue, bcfg)
	if err != nil {
		return err
	}
	defer device.Destroy()

	target, release, err := createTarget(openDev.Device, bcfg)
	if err != nil {
		return err
	}
	defer release()

	cache := shadercache.New(device)
	defer cache.Destroy()

	collection := points.New(device, cache, cfg.Options()...)
	defer collection.Destroy()

	rng := rand.New(rand.NewPCG(1, 2))
	opts := cfg.PointOptions()
	all := make([]*points.Point, 0, p.count)
	for i := 0; i < p.count; i++ {
		opts.Position = randomPosition(rng)
		opts.ID = i
		pt, err := collection.Add(opts)
		if err != nil {
			return err
		}
		all = append(all, pt)
	}

	encoder := wgpu.NewEncoder(device)
	defer encoder.Destroy()
	view := cameraView()

	moved := int(float64(p.count) * p.churn)
	var total time.Duration
	draws := 0
	for frame := 0; frame < p.frames; frame++ {
		for i := 0; i < moved && len(all) > 0; i++ {
			pt := all[rng.IntN(len(all))]
			if err := pt.SetPosition(randomPosition(rng)); err != nil {
				return err
			}
		}

		start := time.Now()
		fs := &points.FrameState{
			Mode:                p.mode,
			DrawingBufferWidth:  int(view.Viewport[2]),
			DrawingBufferHeight: int(view.Viewport[3]),
			Passes:              points.Passes{Render: true, Pick: p.pick},
		}
		if err := collection.Update(fs); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if err := encoder.Submit(target, fs.CommandList, view); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		cache.Flush()
		total += time.Since(start)
		draws += encoder.Draws()
	}

	stats := collection.Stats()
	cacheStats := cache.Stats()
	devStats := device.Stats()
	fmt.Printf("points:     %d (%s, %d frames, %d moved per frame)\n", p.count, p.mode, p.frames, moved)
	if p.frames > 0 {
		fmt.Printf("frame time: %v avg, %d draws\n", total/time.Duration(p.frames), draws/p.frames)
	}
	fmt.Printf("updates:    %d rebuilds, %d bulk, %d scatter, %d recompiles\n",
		stats.Rebuilds, stats.BulkUpdates, stats.ScatterUpdates, stats.Recompiles)
	fmt.Printf("shaders:    %d cached, %d hits, %d misses\n", cache.Len(), cacheStats.Hits, cacheStats.Misses)
	fmt.Printf("device:     %d buffers, %d programs, %d pipelines, %d pick IDs\n",
		devStats.Buffers, devStats.Programs, devStats.Pipelines, devStats.PickIDs)
	return nil
}

// randomPosition returns a point up to 10 km above WGS84.
func randomPosition(rng *rand.Rand) mgl64.Vec3 {
	return proj.WGS84.CartographicToCartesian(proj.Cartographic{
		Longitude: (rng.Float64()*2 - 1) * math.Pi,
		Latitude:  math.Asin(rng.Float64()*2 - 1),
		Height:    rng.Float64() * 10000,
	})
}

// cameraView looks at the Earth from three radii away.
func cameraView() wgpu.ViewUniforms {
	eye := mgl64.Vec3{3 * proj.WGS84.MaximumRadius(), 0, 0}
	return wgpu.ViewUniforms{
		View:       mgl64.LookAtV(eye, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}),
		Projection: mgl64.Perspective(mgl64.DegToRad(60), 16.0/9.0, 1, 1e8),
		Eye:        eye,
		Viewport:   [4]float32{0, 0, 1280, 720},
	}
}

func createTarget(device hal.Device, cfg wgpu.Config) (wgpu.RenderTarget, func(), error) {
	size := hal.Extent3D{Width: 1280, Height: 720, DepthOrArrayLayers: 1}
	var cleanup []func()
	release := func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}

	attachment := func(label string, format gputypes.TextureFormat) (hal.TextureView, error) {
		tex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         label,
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   cfg.SampleCount,
			Dimension:     gputypes.TextureDimension2D,
			Format:        format,
			Usage:         gputypes.TextureUsageRenderAttachment,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", label, err)
		}
		cleanup = append(cleanup, func() { device.DestroyTexture(tex) })
		view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
		if err != nil {
			return nil, fmt.Errorf("create %s view: %w", label, err)
		}
		cleanup = append(cleanup, func() { device.DestroyTextureView(view) })
		return view, nil
	}

	var target wgpu.RenderTarget
	var err error
	if target.Color, err = attachment("bench_color", gputypes.TextureFormat(cfg.ColorFormat)); err != nil {
		release()
		return target, nil, err
	}
	if cfg.SampleCount > 1 {
		// Resolve into a single-sampled copy.
		tex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         "bench_resolve",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gputypes.TextureFormat(cfg.ColorFormat),
			Usage:         gputypes.TextureUsageRenderAttachment,
		})
		if err != nil {
			release()
			return target, nil, fmt.Errorf("create bench_resolve: %w", err)
		}
		cleanup = append(cleanup, func() { device.DestroyTexture(tex) })
		if target.Resolve, err = device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "bench_resolve_view"}); err != nil {
			release()
			return target, nil, fmt.Errorf("create bench_resolve view: %w", err)
		}
		resolve := target.Resolve
		cleanup = append(cleanup, func() { device.DestroyTextureView(resolve) })
	}
	if cfg.DepthFormat != 0 {
		if target.Depth, err = attachment("bench_depth", gputypes.TextureFormat(cfg.DepthFormat)); err != nil {
			release()
			return target, nil, err
		}
	}
	target.Clear = &gputypes.Color{A: 1}
	return target, release, nil
}
