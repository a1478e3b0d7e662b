package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/firmhunt/xorscan/cmd/internal"
	"github.com/firmhunt/xorscan/pkg/entropy"
	"github.com/firmhunt/xorscan/pkg/scan"
	"github.com/firmhunt/xorscan/pkg/sigcat"
)

var version = "dev"

func main() {
	var (
		helpFlag    bool
		versionFlag bool
		workers     int
		maxRead     int64
		strictSize  bool
		keyWidth    int
		useRC4      bool
		extended    bool
		jsonOut     bool
		entropyPre  bool
		quiet       bool
	)
	defaults := viper.New()
	defaults.SetEnvPrefix("XORSCAN")
	defaults.AutomaticEnv()
	defaults.SetDefault("workers", runtime.NumCPU())
	defaults.SetDefault("max_read", int64(scan.DefaultMaxRead))

	flags := flag.NewFlagSet("xorscan", flag.ContinueOnError)
	flags.BoolVarP(&helpFlag, "help", "h", false, "Prints this usage information.")
	flags.BoolVar(&versionFlag, "version", false, "Prints the xorscan version.")
	flags.IntVarP(&workers, "workers", "w", defaults.GetInt("workers"), "Number of parallel scan workers.")
	flags.Int64VarP(&maxRead, "max-read", "m", defaults.GetInt64("max_read"), "Cap in bytes on how much of FILE is read and scanned.")
	flags.BoolVar(&strictSize, "strict-size", false, "Refuse files larger than the read cap instead of scanning the leading window.")
	flags.IntVarP(&keyWidth, "key-width", "k", 4, "Key size in bytes, 1 through 4.")
	flags.BoolVar(&useRC4, "rc4", false, "Treat candidate keys as RC4 keys instead of repeating XOR masks.")
	flags.BoolVar(&extended, "extended", false, "Also search UBI, UBIFS, ext, romfs, and F2FS magics.")
	flags.BoolVar(&jsonOut, "json", false, "Print matches as JSON instead of the plain report.")
	flags.BoolVar(&entropyPre, "entropy", false, "Print randomness estimates for the scanned window before searching.")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Suppress progress and log output.")
	flags.Usage = func() {
		fmt.Printf(`
xorscan hunts for filesystem images hidden inside firmware binaries that were obfuscated with a fixed XOR mask or a short RC4 key.
It reads the leading window of FILE, applies every candidate key in KEYSPEC, and reports each offset where a known filesystem magic appears.

USAGE:  xorscan [FLAGS] KEYSPEC FILE

ARGS:
    KEYSPEC selects the keys to test. One of:
        a single key        0xDEADBEEF  (Go numeric literal, decimal works too)
        a half-open range   0x1000:0x2000
        all                 the full key space for the configured key width
    FILE is the firmware binary to search.

FLAGS:
%s
Defaults for --workers and --max-read can also be set through the XORSCAN_WORKERS and XORSCAN_MAX_READ environment variables.

NOTES:
    A match only proves that the magic bytes line up under that key. xorscan does not extract or validate the filesystem; follow up with your usual carving tools.
    Exhaustive scans over 4-byte keys test 2^32 candidates, so keep the read window modest. Ctrl-C stops the scan and reports whatever was found so far.
`, flags.FlagUsages())
	}
	if len(os.Args) == 1 {
		flags.Usage()
		return
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		flags.Usage()
		internal.Fatal("Error parsing flags: %v", err)
	}
	if helpFlag {
		flags.Usage()
		return
	}
	if versionFlag {
		internal.Echo("xorscan %s", version)
		return
	}
	if flags.NArg() != 2 {
		flags.Usage()
		internal.Fatal("Expected exactly two arguments: KEYSPEC and FILE")
	}
	if keyWidth < 1 || keyWidth > 4 {
		internal.Fatal("Key width must be between 1 and 4 bytes, got %d", keyWidth)
	}

	logger := buildLogger(quiet)
	defer func() {
		_ = logger.Sync()
	}()

	first, last, single, err := parseKeySpec(flags.Arg(0), keyWidth)
	if err != nil {
		internal.Fatal("Bad KEYSPEC: %v", err)
	}

	policy := scan.PolicyTruncate
	if strictSize {
		policy = scan.PolicyReject
	}
	buf, truncated, err := scan.ReadWindow(flags.Arg(1), maxRead, policy)
	if err != nil {
		internal.Fatal("Cannot read input: %v", err)
	}
	if truncated {
		logger.Warn("file is larger than the read cap, scanning the leading window only",
			zap.Int64("cap_bytes", maxRead))
	}
	logger.Info("loaded scan window",
		zap.String("file", flags.Arg(1)),
		zap.Int("bytes", len(buf)))

	if entropyPre {
		printEntropy(logger, buf)
	}

	catalog := sigcat.Default()
	if extended {
		catalog = sigcat.Extended()
	}
	transform := scan.XOR
	if useRC4 {
		transform = scan.RC4
	}
	opts := []scan.Opt{
		scan.WithCatalog(catalog),
		scan.WithWorkers(workers),
		scan.WithKeyWidth(keyWidth),
		scan.WithTransform(transform),
		scan.WithLogger(logger),
	}
	// The counter also feeds the closing summary, so an interrupted scan
	// reports how far it actually got.
	var workDone atomic.Uint64
	opts = append(opts, scan.WithProgress(func(done, total uint64) {
		workDone.Store(done)
		if !quiet {
			consoleProgress(done, total)
		}
	}, 2*time.Second))
	scanner, err := scan.NewScanner(opts...)
	if err != nil {
		internal.Fatal("Bad scan configuration: %v", err)
	}

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stopSignals()

	start := time.Now()
	var results scan.ResultSet
	if single {
		results, err = scanner.ScanKey(ctx, buf, first)
	} else {
		results, err = scanner.ScanKeyRange(ctx, buf, first, last)
	}
	elapsed := time.Since(start)
	if !quiet {
		internal.Echo("") // progress line ends without a newline
	}

	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		internal.Fatal("Scan failed: %v", err)
	}

	report(results, keyWidth, jsonOut)
	completed := last - first
	if interrupted {
		// Progress counts offsets in single-key mode, not keys; the one
		// requested key was not finished either way.
		completed = workDone.Load()
		if single {
			completed = 0
		}
	}
	fmt.Println(summarize(last-first, completed, interrupted, elapsed))
	if interrupted {
		internal.FatalCode(130, "Scan interrupted, results above are partial")
	}
}

// parseKeySpec turns the KEYSPEC argument into a half-open key range.
// single reports that the argument named one key, which selects offset-sharded
// single-key mode instead of an exhaustive search.
func parseKeySpec(spec string, width int) (first, last uint64, single bool, err error) {
	space := uint64(1) << (8 * width)
	if strings.EqualFold(spec, "all") {
		return 0, space, false, nil
	}
	if lo, hi, isRange := strings.Cut(spec, ":"); isRange {
		first, err = strconv.ParseUint(lo, 0, 64)
		if err != nil {
			return 0, 0, false, fmt.Errorf("range start %q is not a number: %w", lo, err)
		}
		last, err = strconv.ParseUint(hi, 0, 64)
		if err != nil {
			return 0, 0, false, fmt.Errorf("range end %q is not a number: %w", hi, err)
		}
		if first >= last || last > space {
			return 0, 0, false, fmt.Errorf("range [%#x, %#x) does not fit %d-byte keys", first, last, width)
		}
		return first, last, false, nil
	}
	key, err := strconv.ParseUint(spec, 0, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("key %q is not a number: %w", spec, err)
	}
	if key >= space {
		return 0, 0, false, fmt.Errorf("key %#x does not fit %d-byte keys", key, width)
	}
	return key, key + 1, true, nil
}

func buildLogger(quiet bool) *zap.Logger {
	if quiet {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		internal.Fatal("Failed to set up logging: %v", err)
	}
	return logger
}

func consoleProgress(done, total uint64) {
	pct := float64(done) / float64(total) * 100
	_, _ = fmt.Fprintf(os.Stderr, "\r[*] Progress: %5.1f%% (%d/%d)", pct, done, total)
}

func printEntropy(logger *zap.Logger, buf []byte) {
	rep, err := entropy.Analyze(buf, 32)
	if err != nil {
		logger.Warn("randomness estimates unavailable", zap.Error(err))
		return
	}
	logger.Info("window randomness",
		zap.Float64("shannon_bits_per_byte", rep.Shannon),
		zap.Float64("chi_square", rep.ChiSquare),
		zap.Float64("autocorr_sd", rep.AutocorrSD))
	if rep.HighEntropy() {
		logger.Warn("window looks uniformly random; a fixed XOR mask usually leaves structure, expect few hits")
	}
}

func report(results scan.ResultSet, keyWidth int, jsonOut bool) {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			internal.Fatal("Failed to encode results: %v", err)
		}
		return
	}
	if len(results) == 0 {
		fmt.Println("[*] No filesystem signatures found")
		return
	}
	fmt.Printf("[+] Found %d filesystem signature(s):\n\n", len(results))
	for _, m := range results {
		fmt.Printf("  [+] Key: 0x%0*X\n", keyWidth*2, m.Key)
		fmt.Printf("      Filesystem: %s\n", m.Name)
		fmt.Printf("      Offset: 0x%X (%d bytes)\n", m.Offset, m.Offset)
		fmt.Printf("      Endianness: %s\n\n", m.Endian)
	}
}

// summarize builds the closing stats line. An interrupted scan states how
// many of the requested keys completed instead of claiming full coverage.
func summarize(requested, completed uint64, interrupted bool, elapsed time.Duration) string {
	if interrupted {
		return fmt.Sprintf("[*] Interrupted after %d of %d key(s) in %s",
			completed, requested, elapsed.Round(time.Millisecond))
	}
	line := fmt.Sprintf("[*] Scanned %d key(s) in %s", requested, elapsed.Round(time.Millisecond))
	if secs := elapsed.Seconds(); secs > 0 {
		line += fmt.Sprintf(" (%.0f keys/second)", float64(requested)/secs)
	}
	return line
}
