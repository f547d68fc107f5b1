// Command sigspec generates a signal from a parameterized law and prints its
// spectral analysis: fundamental, harmonic table, THD, and time-domain
// statistics.
//
// Usage:
//
//	sigspec [flags]
//
// Examples:
//
//	sigspec -law sine -freq 440 -rate 48000 -dur 1
//	sigspec -law harmonic -freq 220 -harmonics 6 -window blackman -fft 8192
//	sigspec -law chirp -freq 100 -endfreq 2000 -dur 2
//	sigspec -stream -frames 16 -framelen 512
//	sigspec -config bench.json -json
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cwbudde/signalyzer/analyze"
	"github.com/cwbudde/signalyzer/compute"
	"github.com/cwbudde/signalyzer/config"
	"github.com/cwbudde/signalyzer/event"
	"github.com/cwbudde/signalyzer/law"
	"github.com/cwbudde/signalyzer/logging"
	"github.com/cwbudde/signalyzer/ring"
	"github.com/cwbudde/signalyzer/signal"
	"github.com/cwbudde/signalyzer/store"
)

// flagParams maps command-line flag names to law parameter names.
var flagParams = map[string]string{
	"freq":      law.ParamFrequency,
	"amp":       law.ParamAmplitude,
	"phase":     law.ParamPhase,
	"offset":    law.ParamOffset,
	"duty":      law.ParamDuty,
	"endfreq":   law.ParamEndFrequency,
	"sweep":     law.ParamSweepTime,
	"seed":      law.ParamSeed,
	"harmonics": law.ParamHarmonics,
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "JSON configuration file; flags override it")
	name := flag.String("name", "cli", "signal name")

	lawName := flag.String("law", "sine", "law kind (sine|cosine|square|triangle|sawtooth|pulse|chirp|noise|harmonic)")
	freq := flag.Float64("freq", 440, "frequency in Hz")
	amp := flag.Float64("amp", 1, "amplitude")
	phase := flag.Float64("phase", 0, "phase in radians")
	offset := flag.Float64("offset", 0, "DC offset")
	duty := flag.Float64("duty", 0.5, "pulse duty cycle in [0, 1]")
	endfreq := flag.Float64("endfreq", 0, "chirp end frequency in Hz")
	sweep := flag.Float64("sweep", 0, "chirp sweep time in seconds (0 = whole duration)")
	seed := flag.Int64("seed", 1, "noise seed")
	harmonics := flag.Int("harmonics", 4, "harmonic series length")

	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	dur := flag.Float64("dur", 1, "duration in seconds")

	windowName := flag.String("window", "hann", "analysis window (rectangular|hann|hamming|blackman)")
	winsize := flag.Int("winsize", 1024, "analysis window size in samples")
	fft := flag.Int("fft", 4096, "transform size (rounded up to a power of two)")
	overlap := flag.Float64("overlap", 0.5, "frame overlap in [0, 1)")
	thresh := flag.Float64("thresh", 0.01, "detection threshold")
	maxharm := flag.Int("maxharm", 10, "maximum detected components")

	streamFlag := flag.Bool("stream", false, "stream frames through the ring buffer before analyzing")
	frames := flag.Int("frames", 8, "number of frames to stream")
	framelen := flag.Int("framelen", 1024, "streamed frame length in samples")
	ringcap := flag.Int("ringcap", 64, "ring buffer capacity in frames")

	strategyName := flag.String("strategy", "auto", "compute strategy (auto|gpu|cpu)")
	jsonOut := flag.Bool("json", false, "print the report as JSON")
	verbose := flag.Bool("v", false, "enable engine logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sigspec [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Generates a signal from a parameterized law and prints its spectral analysis.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  sigspec -law sine -freq 440\n")
		fmt.Fprintf(os.Stderr, "  sigspec -law harmonic -freq 220 -harmonics 6 -window blackman\n")
		fmt.Fprintf(os.Stderr, "  sigspec -stream -frames 16\n")
		fmt.Fprintf(os.Stderr, "  sigspec -config bench.json -json\n")
	}
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if *verbose {
		log, err := logging.New()
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		logging.SetGlobal(log)
	}
	log := logging.L()

	cfg := config.Default()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			return err
		}
		loaded, err := config.Load(f)
		f.Close()
		if err != nil {
			return err
		}
		cfg = loaded
	}

	lawChanged := set["law"] && *lawName != cfg.LawKind
	if set["law"] {
		cfg.LawKind = *lawName
	}
	if set["rate"] {
		cfg.SampleRate = *rate
	}
	if set["dur"] {
		cfg.Duration = *dur
	}
	if set["window"] {
		cfg.WindowKind = *windowName
	}
	if set["winsize"] {
		cfg.WindowSize = *winsize
	}
	if set["fft"] {
		cfg.TransformSize = *fft
	}
	if set["overlap"] {
		cfg.Overlap = *overlap
	}
	if set["thresh"] {
		cfg.DetectionThreshold = *thresh
	}
	if set["maxharm"] {
		cfg.MaxHarmonics = *maxharm
	}
	if set["framelen"] {
		cfg.FrameLength = *framelen
	}
	if set["ringcap"] {
		cfg.RingCapacity = *ringcap
	}
	if set["strategy"] {
		cfg.ComputeStrategy = *strategyName
	}

	lawVals := map[string]float64{
		law.ParamFrequency:    *freq,
		law.ParamAmplitude:    *amp,
		law.ParamPhase:        *phase,
		law.ParamOffset:       *offset,
		law.ParamDuty:         *duty,
		law.ParamEndFrequency: *endfreq,
		law.ParamSweepTime:    *sweep,
		law.ParamSeed:         float64(*seed),
		law.ParamHarmonics:    float64(*harmonics),
	}

	params, err := mergeLawParams(cfg, lawChanged, set, lawVals)
	if err != nil {
		return err
	}
	cfg.LawParameters = params

	if err := cfg.Validate(); err != nil {
		return err
	}

	lw, err := cfg.Law()
	if err != nil {
		return err
	}

	strategy, err := cfg.Strategy()
	if err != nil {
		return err
	}

	hub := event.NewHub(event.WithLogger(log))
	hub.Subscribe(event.TypeDegradedToCPU, "cli", func(ev event.Event) error {
		if d, ok := ev.(event.DegradedToCPU); ok {
			fmt.Fprintf(os.Stderr, "warning: %s unavailable, using cpu engine (%s)\n", d.From, d.Reason)
		}
		return nil
	})

	engine, err := compute.Select(strategy, compute.WithHub(hub), compute.WithLogger(log))
	if err != nil {
		return err
	}

	ctx := context.Background()

	gen := signal.NewGenerator(
		signal.WithEngine(engine),
		signal.WithHub(hub),
		signal.WithLogger(log),
	)

	sig, err := gen.Generate(ctx, *name, lw, cfg.SampleRate, cfg.Duration)
	if err != nil {
		return err
	}

	mem := store.NewMemory()
	if err := mem.SaveSignal(ctx, sig); err != nil {
		return err
	}

	runner := analyze.NewRunner(1,
		analyze.WithEngine(engine),
		analyze.WithLogger(log),
		analyze.WithHub(hub),
	)
	defer runner.Close()

	rec := store.NewRecorder(mem, hub,
		store.WithSessionLookup(runner.Session),
		store.WithLogger(log),
	)
	defer rec.Close()

	var streamInfo *streamReport
	if *streamFlag {
		streamInfo, err = runStream(ctx, lw, cfg, *frames, hub, engine, log)
		if err != nil {
			return err
		}
	}

	analysisCfg, err := cfg.Analysis()
	if err != nil {
		return err
	}

	session, err := runner.Submit(ctx, sig, analysisCfg)
	if err != nil {
		return err
	}
	runner.Wait()

	if session.Status() != analyze.StatusComplete {
		return fmt.Errorf("analysis %s: %w", session.Status(), session.Err())
	}

	rep := buildReport(sig, session, engine.Name(), streamInfo)

	if *jsonOut {
		return printJSON(os.Stdout, rep)
	}

	return printReport(os.Stdout, rep)
}

// mergeLawParams resolves the law parameter set from the configuration and
// the explicitly passed flags. Switching to a different law on the command
// line discards the configured set; the new law starts from the frequency
// and amplitude flag values where it accepts them.
func mergeLawParams(cfg config.Config, lawChanged bool, set map[string]bool, vals map[string]float64) (map[string]float64, error) {
	params := make(map[string]float64)

	if lawChanged {
		kind, err := law.ParseKind(cfg.LawKind)
		if err != nil {
			return nil, err
		}
		specs, err := law.Describe(kind)
		if err != nil {
			return nil, err
		}
		for _, s := range specs {
			if s.Name == law.ParamFrequency || s.Name == law.ParamAmplitude {
				params[s.Name] = vals[s.Name]
			}
		}
	} else {
		for k, v := range cfg.LawParameters {
			params[k] = v
		}
	}

	for flagName, paramName := range flagParams {
		if set[flagName] {
			params[paramName] = vals[paramName]
		}
	}

	return params, nil
}

// runStream pushes frames through the ring buffer until the requested count
// has been published, then reports what the ring saw.
func runStream(ctx context.Context, lw law.Law, cfg config.Config, want int, hub *event.Hub, engine compute.Engine, log logging.Logger) (*streamReport, error) {
	if want < 1 {
		return nil, fmt.Errorf("frames must be >= 1: got %d", want)
	}

	buf, err := ring.New(cfg.RingCapacity, cfg.FrameLength)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	seen := 0
	sub := hub.Subscribe(event.TypeFrameReady, "cli", func(ev event.Event) error {
		if _, ok := ev.(event.FrameReady); !ok {
			return nil
		}
		seen++
		if seen == want {
			close(done)
		}
		return nil
	})
	defer sub.Unsubscribe()

	str, err := signal.NewStreamer(lw,
		signal.StreamConfig{SampleRate: cfg.SampleRate, FrameLen: cfg.FrameLength},
		buf,
		signal.WithEngine(engine),
		signal.WithHub(hub),
		signal.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	if err := str.Start(ctx); err != nil {
		return nil, err
	}

	interval := time.Duration(float64(cfg.FrameLength) / cfg.SampleRate * float64(time.Second))
	timeout := 5*time.Second + 4*time.Duration(want)*interval

	select {
	case <-done:
	case <-time.After(timeout):
		str.Stop()
		return nil, fmt.Errorf("streaming timed out after %v", timeout)
	}
	str.Stop()

	if err := str.Err(); err != nil {
		return nil, err
	}

	latest, ok := buf.Latest()
	if !ok {
		return nil, fmt.Errorf("ring buffer empty after streaming")
	}

	covered := latest.Start + time.Duration(float64(cfg.FrameLength)/cfg.SampleRate*float64(time.Second))

	return &streamReport{
		Frames:      buf.Written(),
		FrameLength: cfg.FrameLength,
		Buffered:    buf.Len(),
		LastSeq:     latest.Seq,
		CoveredMS:   float64(covered) / float64(time.Millisecond),
	}, nil
}
