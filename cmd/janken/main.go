// Command janken plays rock-paper-scissors against the hands detected in photos.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nvr-ai/janken/config"
	"github.com/nvr-ai/janken/controller"
	"github.com/nvr-ai/janken/images"
	"github.com/nvr-ai/janken/images/annotate"
	"github.com/nvr-ai/janken/images/overlay"
	"github.com/nvr-ai/janken/inference"
	"github.com/nvr-ai/janken/inference/providers"
	"github.com/nvr-ai/janken/janken"
	"github.com/nvr-ai/janken/models/postprocess"
	"github.com/nvr-ai/janken/profiler"
	"github.com/nvr-ai/janken/server"
	"github.com/nvr-ai/janken/util"
	ort "github.com/yalue/onnxruntime_go"
)

// DefaultModelPath is the exported hand detection model.
const DefaultModelPath = "model/janken_detectionmodel.onnx"

type options struct {
	configPath    string
	modelPath     string
	imagePath     string
	dir           string
	output        string
	confidence    float64
	iou           float64
	playersOnly   bool
	serve         bool
	addr          string
	seed          int64
	simulate      int
	backend       string
	warmup        int
	tensorDecoder bool
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML configuration file, flags given explicitly override it")
	flag.StringVar(&opts.modelPath, "model", DefaultModelPath, "Path to the YOLOv8 hand detection ONNX model")
	flag.StringVar(&opts.imagePath, "image", "", "Path to an image to play a round with")
	flag.StringVar(&opts.dir, "dir", "", "Directory of images to play one round each with")
	flag.StringVar(&opts.output, "output", "", "Annotated output image (with -image) or directory (with -dir)")
	flag.Float64Var(&opts.confidence, "conf", 0.5, "Minimum detection confidence in [0, 1]")
	flag.Float64Var(&opts.iou, "iou", 0.5, "IoU threshold for non-maximum suppression in [0, 1]")
	flag.BoolVar(&opts.playersOnly, "players-only", false, "Only report detected hands, do not play")
	flag.BoolVar(&opts.serve, "serve", false, "Serve the HTTP API")
	flag.StringVar(&opts.addr, "addr", config.DefaultAddr, "Listen address for -serve")
	flag.Int64Var(&opts.seed, "seed", 0, "Seed for the opponent, 0 seeds from the clock")
	flag.IntVar(&opts.simulate, "simulate", 0, "Play a round between this many random players and the opponent, no model needed")
	flag.StringVar(&opts.backend, "backend", string(providers.CPUBackend), "Execution provider: cpu, coreml, openvino or cuda")
	flag.IntVar(&opts.warmup, "warmup", 1, "Warm-up inferences after loading the model")
	flag.BoolVar(&opts.tensorDecoder, "tensor-decoder", false, "Decode with tensor reductions instead of the row loop")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(opts)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := run(ctx, cfg, opts); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

// loadConfig reads -config, if any, and applies the flags set on the command line. Without a
// file every flag applies.
func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	override := func(name string) bool { return opts.configPath == "" || set[name] }

	if override("model") {
		cfg.Model.Path = opts.modelPath
	}
	if override("conf") {
		cfg.Model.ConfidenceThreshold = float32(opts.confidence)
		cfg.Model.NMS.ScoreThreshold = float32(opts.confidence)
	}
	if override("iou") {
		cfg.Model.NMS.IoUThreshold = float32(opts.iou)
	}
	if override("tensor-decoder") {
		cfg.Model.TensorDecoder = opts.tensorDecoder
	}
	if override("backend") {
		backend, err := providers.ParseBackend(opts.backend)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Provider.Backend = backend
	}
	if override("warmup") {
		cfg.Provider.Warmup = opts.warmup
	}
	if override("addr") {
		cfg.Server.Addr = opts.addr
	}
	if override("seed") {
		cfg.Seed = opts.seed
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg config.Config, opts options) error {
	generator := janken.NewGenerator(nil)
	if cfg.Seed != 0 {
		generator = janken.NewSeededGenerator(cfg.Seed)
	}

	if opts.simulate > 0 {
		round, hands, err := controller.New(nil, generator).Simulate(opts.simulate)
		if err != nil {
			return err
		}
		fmt.Printf("%d players threw: %v\n", len(hands), hands)
		printRound(round)
		return nil
	}

	if !opts.serve && opts.imagePath == "" && opts.dir == "" {
		return fmt.Errorf("one of -image, -dir, -serve or -simulate is required")
	}

	prof := profiler.New(0)
	engine, err := newEngine(ctx, cfg, prof)
	if err != nil {
		return fmt.Errorf("failed to create detector: %w", err)
	}
	defer ort.DestroyEnvironment()
	defer engine.Close()
	log.Printf("✅ ONNX detector initialized with model: %s", cfg.Model.Path)

	game := controller.New(engine, generator)
	palette := annotate.DefaultPalette()

	switch {
	case opts.serve:
		prof.Start(ctx, time.Minute)
		return server.New(game).WithProfiler(prof).ListenAndServe(ctx, cfg.Server.Addr)
	case opts.dir != "":
		err = playDirectory(ctx, game, palette, opts)
	default:
		err = playImage(ctx, game, palette, opts.imagePath, opts.output, opts.playersOnly)
	}
	log.Printf("📊 Pipeline status:\n%s", prof.Report())
	return err
}

func newEngine(ctx context.Context, cfg config.Config, prof *profiler.Profiler) (inference.Engine, error) {
	detector, err := inference.NewEngineBuilder().
		WithProvider(cfg.Provider).
		WithModel(cfg.Model).
		WithProfiler(prof).
		Build(ctx)
	if err != nil {
		return nil, err
	}
	return detector, nil
}

func playDirectory(ctx context.Context, game *controller.Controller, palette annotate.Palette, opts options) error {
	files, err := util.LoadDirectoryImageFiles(opts.dir)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", opts.dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found in %s", opts.dir)
	}
	if opts.output != "" {
		if err := os.MkdirAll(opts.output, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		output := ""
		if opts.output != "" {
			output = filepath.Join(opts.output, file.Name())
		}
		img, err := images.DecodeBytes(file.Data)
		if err != nil {
			log.Printf("⚠️  %s: %v", file.Path, err)
			continue
		}
		if err := playDecoded(ctx, game, palette, file.Path, img, output, opts.playersOnly); err != nil {
			log.Printf("⚠️  %s: %v", file.Path, err)
		}
	}
	return nil
}

func playImage(ctx context.Context, game *controller.Controller, palette annotate.Palette, path, output string, playersOnly bool) error {
	img, err := images.Load(path)
	if err != nil {
		return err
	}
	return playDecoded(ctx, game, palette, path, img, output, playersOnly)
}

func playDecoded(ctx context.Context, game *controller.Controller, palette annotate.Palette, path string, img image.Image, output string, playersOnly bool) error {
	fmt.Printf("== %s\n", path)
	var (
		detections []postprocess.Result
		caption    string
		err        error
	)
	if playersOnly {
		detections, err = game.Detect(ctx, img)
		if err != nil {
			return err
		}
		players := janken.HandsFromDetections(detections)
		fmt.Printf("PLAYER hands: %s\n", players)
		caption = players.String()
	} else {
		round, err := game.Play(ctx, img)
		if err != nil {
			return err
		}
		printRound(round)
		detections = round.Detections
		caption = fmt.Sprintf("COM %s - winner: %s", round.Opponent, round.Verdict)
	}

	for _, d := range detections {
		fmt.Printf("   %s\n", annotate.Label(d))
	}

	if output == "" {
		return nil
	}
	if err := overlay.Write(output, img, detections, palette, caption); err != nil {
		return err
	}
	log.Printf("💾 Saved annotated image to %s", output)
	return nil
}

func printRound(round *controller.Round) {
	fmt.Printf("COM hand: %s\n", round.Opponent)
	fmt.Printf("PLAYER hands: %s\n", strings.Trim(round.Players.String(), "{}"))
	fmt.Printf("winner: %s\n", round.Verdict)
}
