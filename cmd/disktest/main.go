// Command disktest writes a deterministic, seed-derived pseudo-random
// byte stream to a block device or file and reads it back to verify
// every byte.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"golang.org/x/term"

	"github.com/Platinum-Technologie/disktest/internal/aggregator"
	"github.com/Platinum-Technologie/disktest/internal/config"
	"github.com/Platinum-Technologie/disktest/internal/device"
	"github.com/Platinum-Technologie/disktest/internal/driver"
	"github.com/Platinum-Technologie/disktest/internal/generator"
	"github.com/Platinum-Technologie/disktest/internal/observability"
)

// Exit codes.
const (
	exitOK = iota
	exitUsage
	exitOpenFailed
	exitIOError
	exitMismatch
	// exitCancelled follows the conventional 128+SIGINT shell exit code.
	exitCancelled = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	write := flag.Bool("write", false, "Write to the device (default: verify).")
	flag.BoolVar(write, "w", false, "Shorthand for --write.")
	seekStr := flag.String("seek", "", "Byte offset to start at. Supports k/M/G/T suffixes.")
	flag.StringVar(seekStr, "s", "", "Shorthand for --seek.")
	bytesStr := flag.String("bytes", "", "Number of bytes to read/write. Default: unbounded.")
	flag.StringVar(bytesStr, "b", "", "Shorthand for --bytes.")
	algoStr := flag.String("algorithm", string(generator.SHA512), "Generator algorithm: SHA512, ChaCha20, or CRC.")
	flag.StringVar(algoStr, "A", string(generator.SHA512), "Shorthand for --algorithm.")
	seedStr := flag.String("seed", "42", "Seed string for random data generation.")
	flag.StringVar(seedStr, "S", "42", "Shorthand for --seed.")
	threads := flag.Int("threads", 0, "Worker count. 0 means all online CPUs.")
	flag.IntVar(threads, "j", 0, "Shorthand for --threads.")
	quiet := flag.Int("quiet", 0, "Verbosity: 0, 1, or 2.")
	flag.IntVar(quiet, "q", 0, "Shorthand for --quiet.")
	metricsAddr := flag.String("metrics-addr", "", "If set, serve Prometheus metrics on this address for the run's duration.")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: disktest [options] <device>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Options:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		return exitUsage
	}
	devicePath := flag.Arg(0)

	seek, _, err := config.ParseByteQuantity(*seekStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --seek value: %v\n", err)
		return exitUsage
	}
	maxBytes, bytesSet, err := config.ParseByteQuantity(*bytesStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --bytes value: %v\n", err)
		return exitUsage
	}
	if !bytesSet {
		maxBytes = driver.Unbounded
	}

	threadCount := *threads
	if threadCount == 0 {
		threadCount = runtime.NumCPU()
	}

	cfg := config.Config{
		Device:      devicePath,
		Write:       *write,
		Seek:        seek,
		Bytes:       maxBytes,
		Algorithm:   generator.Algorithm(*algoStr),
		Seed:        []byte(*seedStr),
		Threads:     threadCount,
		Quiet:       *quiet,
		MetricsAddr: *metricsAddr,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitUsage
	}

	runID := observability.NewRunID()
	logger := observability.NewLogger(runID, cfg.Quiet, os.Stderr).WithDevice(cfg.Device)

	shutdownTracing, err := observability.InitTracing(context.Background())
	if err != nil {
		logger.Error(err, "failed to initialize tracing")
		return exitIOError
	}
	defer shutdownTracing(context.Background())

	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		metrics = observability.NewMetrics()
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go srv.ListenAndServe()
		defer srv.Close()
	}

	f, err := device.Open(cfg.Device, cfg.Write)
	if err != nil {
		logger.Error(err, "failed to open device")
		return exitOpenFailed
	}
	defer f.Close()

	mode := "verify"
	if cfg.Write {
		mode = "write"
	}
	logger.RunStarted(mode, cfg.Seek, cfg.Bytes, string(cfg.Algorithm), cfg.Threads)

	// An interactive terminal gets a plain start banner in addition
	// to the structured log stream; a redirected/piped stderr only gets
	// the structured lines.
	if term.IsTerminal(int(os.Stderr.Fd())) {
		verb := "Verifying"
		if cfg.Write {
			verb = "Writing"
		}
		fmt.Fprintf(os.Stderr, "disktest: %s %s (algorithm=%s, threads=%d)\n",
			verb, devicePath, cfg.Algorithm, cfg.Threads)
	}

	agg, err := aggregator.New(cfg.Algorithm, cfg.Seed, cfg.Threads, cfg.ChunkFactor())
	if err != nil {
		var unsupported generator.ErrUnsupportedAlgorithm
		if errors.As(err, &unsupported) {
			logger.Error(err, "unsupported algorithm")
			return exitUsage
		}
		logger.Error(err, "failed to construct stream aggregator")
		return exitIOError
	}
	defer agg.Drop()
	if metrics != nil {
		agg.SetMetrics(metrics)
	}

	// Cancellation is honored by the driver's own poll loop (internal/driver
	// nextChunk selects on ctx.Done() between chunks), and cascades to
	// dropping the aggregator so no worker outlives the run.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		agg.Drop()
	}()

	runCtx, span := otel.Tracer("disktest").Start(ctx, mode)
	defer span.End()

	start := time.Now()
	if cfg.Write {
		wd := &driver.WriteDriver{File: f, Source: agg, Logger: logger, Metrics: metrics}
		res, err := wd.Run(runCtx, cfg.Seek, cfg.Bytes)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Error(err, "write cancelled")
				return exitCancelled
			}
			logger.Error(err, "write failed")
			return exitIOError
		}
		logger.RunCompleted(mode, res.BytesWritten, humanize.IBytes(res.BytesWritten), time.Since(start))
		return exitOK
	}

	vd := &driver.VerifyDriver{File: f, Source: agg, Logger: logger, Metrics: metrics}
	vres, err := vd.Run(runCtx, cfg.Seek, cfg.Bytes)
	if err != nil {
		var mismatch *driver.MismatchError
		if errors.As(err, &mismatch) {
			return exitMismatch
		}
		if errors.Is(err, context.Canceled) {
			logger.Error(err, "verify cancelled")
			return exitCancelled
		}
		logger.Error(err, "verify failed")
		return exitIOError
	}
	logger.RunCompleted(mode, vres.BytesVerified, humanize.IBytes(vres.BytesVerified), time.Since(start))
	return exitOK
}
