package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/himanishpuri/AcousticSpot/internal/config"
	"github.com/himanishpuri/AcousticSpot/internal/matchlog"
	"github.com/himanishpuri/AcousticSpot/internal/timestamp"
	"github.com/himanishpuri/AcousticSpot/pkg/acousticspot"
	"github.com/himanishpuri/AcousticSpot/pkg/logger"
	"github.com/himanishpuri/AcousticSpot/pkg/models"
)

// Global flags
var (
	configPath string
	tempDir    string
	sampleRate int
	workers    int
)

func init() {
	// Global flags that can be used with any command
	flag.StringVar(&configPath, "config", getEnvOrDefault("ACOUSTIC_CONFIG", ""), "Optional YAML config file")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("ACOUSTIC_TEMP_DIR", ""), "Directory for temporary audio conversion files")
	flag.IntVar(&sampleRate, "rate", 0, "Audio sample rate for processing (default 16000)")
	flag.IntVar(&workers, "workers", 0, "Parallel scan workers (default: one per CPU)")
	flag.Usage = printUsage
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadConfig returns the YAML file (or the defaults) with global flags
// applied on top.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}
	applyGlobals(cfg)
	return cfg, cfg.Validate()
}

func applyGlobals(cfg *config.Config) {
	if tempDir != "" {
		cfg.Audio.TempDir = tempDir
	}
	if sampleRate != 0 {
		cfg.Audio.SampleRate = sampleRate
	}
	if workers != 0 {
		cfg.Scan.Workers = workers
	}
}

// createService creates a new AcousticSpot service from cfg
func createService(cfg *config.Config, extra ...acousticspot.Option) (acousticspot.Service, error) {
	opts := append(cfg.Options(), acousticspot.WithLogger(logger.GetLogger()))
	return acousticspot.NewService(append(opts, extra...)...)
}

func main() {
	// Initialize logger
	log := logger.GetLogger()

	// Print banner
	printBanner()

	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("❌ Invalid configuration: %v\n", err)
		log.Errorf("Config failed: %v", err)
		os.Exit(1)
	}
	cfg.Logging.Apply(log)

	command := flag.Arg(0)
	args := flag.Args()[1:]
	log.Infof("Executing command: %s", command)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "scan":
		err = handleScan(ctx, cfg, args)
	case "merge":
		err = handleMerge(cfg, args)
	case "spectrogram":
		err = handleSpectrogram(ctx, cfg, args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("\n❌ %s failed: %v\n", command, err)
		log.Errorf("%s failed: %v", command, err)
		stop()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
    _                       _   _      ____              _
   / \   ___ ___  _   _ ___| |_(_) ___/ ___| _ __   ___ | |_
  / _ \ / __/ _ \| | | / __| __| |/ __\___ \| '_ \ / _ \| __|
 / ___ \ (_| (_) | |_| \__ \ |_| | (__ ___) | |_) | (_) | |_
/_/   \_\___\___/ \__,_|___/\__|_|\___|____/| .__/ \___/ \__|
                                            |_|
           Reference Clip Locator CLI Tool
`
	fmt.Fprintln(os.Stderr, banner)
}

// scanFlags parses the scan command line on top of cfg.
func scanFlags(cfg *config.Config, args []string) error {
	scanCmd := flag.NewFlagSet("scan", flag.ContinueOnError)
	input := scanCmd.String("i", cfg.Scan.Input, "Input recording (required)")
	reference := scanCmd.String("r", cfg.Scan.Reference, "Reference clip (required)")
	similarity := scanCmd.Float64("s", cfg.Scan.ThresholdPercent, "Similarity threshold in percent, 0-100 (required)")
	step := scanCmd.Int("st", cfg.Scan.StepMs, "Step between windows in ms")
	output := scanCmd.String("o", cfg.Scan.Output, "Match log to write")
	gap := scanCmd.Int64("gap", cfg.Merge.GapMs, "Gap tolerance in ms for -merged")
	merged := scanCmd.String("merged", cfg.Merge.Output, "Also write consolidated intervals here")

	if err := scanCmd.Parse(args); err != nil {
		return err
	}

	thresholdSet := cfg.Scan.ThresholdSet
	scanCmd.Visit(func(f *flag.Flag) {
		if f.Name == "s" {
			thresholdSet = true
		}
	})

	if *input == "" || *reference == "" || !thresholdSet {
		return fmt.Errorf("-i, -r and -s are required\nUsage: acousticSpot scan -i <input> -r <reference> -s <percent> [-st 50] [-o match_log.txt]")
	}

	cfg.Scan.Input = *input
	cfg.Scan.Reference = *reference
	cfg.Scan.ThresholdPercent = *similarity
	cfg.Scan.StepMs = *step
	cfg.Scan.Output = *output
	cfg.Merge.GapMs = *gap
	cfg.Merge.Output = *merged
	return cfg.Validate()
}

func handleScan(ctx context.Context, cfg *config.Config, args []string) error {
	if err := scanFlags(cfg, args); err != nil {
		return err
	}

	fmt.Println("🔧 Initializing service...")
	svc, err := createService(cfg, acousticspot.WithProgress(printProgress))
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	fmt.Printf("🔍 Searching %s for %s (similarity > %g%%)\n",
		cfg.Scan.Input, cfg.Scan.Reference, cfg.Scan.ThresholdPercent)

	report, err := svc.ScanToLog(ctx, cfg.Scan.Input, cfg.Scan.Reference, cfg.Scan.Output)
	if err != nil {
		return err
	}

	fmt.Printf("\n✅ %d match(es) found\n", report.Detections)
	fmt.Printf("   Run:        %s\n", report.RunID)
	fmt.Printf("   Recording:  %s\n", timestamp.Format(report.InputMs))
	if report.Input != nil {
		fmt.Printf("               %s\n", report.Input)
	}
	fmt.Printf("   Reference:  %s\n", timestamp.Format(report.ReferenceMs))
	if report.Reference != nil {
		fmt.Printf("               %s\n", report.Reference)
	}
	fmt.Printf("   Windows:    %d\n", report.Windows)
	fmt.Printf("   Log:        %s\n", report.LogPath)
	fmt.Printf("   Took:       %s\n", report.Elapsed.Round(time.Millisecond))

	if cfg.Merge.Output == "" {
		return nil
	}

	intervals, err := svc.MergeLog(report.LogPath, cfg.Merge.Output)
	if err != nil {
		return err
	}
	fmt.Printf("\n🧩 %d interval(s) after merging (gap: %d ms), written to %s\n",
		len(intervals), cfg.Merge.GapMs, cfg.Merge.Output)
	printIntervals(intervals)
	return nil
}

// mergeFlags parses the merge command line on top of cfg.
func mergeFlags(cfg *config.Config, args []string) error {
	mergeCmd := flag.NewFlagSet("merge", flag.ContinueOnError)
	input := mergeCmd.String("i", cfg.Merge.Input, "Match log to read (required)")
	output := mergeCmd.String("o", cfg.Merge.Output, "Merged log to write (required)")
	gap := mergeCmd.Int64("gap_ms", cfg.Merge.GapMs, "Gap tolerance in ms")

	if err := mergeCmd.Parse(args); err != nil {
		return err
	}
	if *input == "" || *output == "" {
		return fmt.Errorf("-i and -o are required\nUsage: acousticSpot merge -i <log> -o <out> [-gap_ms 3000]")
	}

	cfg.Merge.Input = *input
	cfg.Merge.Output = *output
	cfg.Merge.GapMs = *gap
	return cfg.Validate()
}

func handleMerge(cfg *config.Config, args []string) error {
	if err := mergeFlags(cfg, args); err != nil {
		return err
	}

	svc, err := createService(cfg)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	intervals, err := svc.MergeLog(cfg.Merge.Input, cfg.Merge.Output)
	if err != nil {
		return err
	}

	if len(intervals) == 0 {
		fmt.Println("\n📭 No matches in log")
		return nil
	}

	fmt.Printf("\n✅ Merged into %d interval(s), written to %s\n\n", len(intervals), cfg.Merge.Output)
	printIntervals(intervals)
	return nil
}

func handleSpectrogram(ctx context.Context, cfg *config.Config, args []string) error {
	// Separate the audio file path from flags
	var audioPath string
	var flagArgs []string
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") && audioPath == "" {
			audioPath = arg
		} else {
			flagArgs = append(flagArgs, args[i:]...)
			break
		}
	}

	specCmd := flag.NewFlagSet("spectrogram", flag.ContinueOnError)
	output := specCmd.String("o", "", "PNG to write (default: <audio>.png)")
	if err := specCmd.Parse(flagArgs); err != nil {
		return err
	}
	if audioPath == "" {
		return fmt.Errorf("audio file required\nUsage: acousticSpot spectrogram <audio> [-o <png>]")
	}
	if *output == "" {
		*output = strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".png"
	}

	svc, err := createService(cfg)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	fmt.Println("🎨 Rendering spectrogram...")
	if err := svc.RenderSpectrogram(ctx, audioPath, *output); err != nil {
		return err
	}
	fmt.Printf("✅ Saved %s\n", *output)
	return nil
}

func printProgress(percent int) {
	fmt.Printf("Progress: %d%%\n", percent)
}

func printIntervals(intervals []models.MatchInterval) {
	maxDisplay := min(len(intervals), 20)
	for _, m := range intervals[:maxDisplay] {
		fmt.Println("   " + matchlog.FormatLine(m))
	}
	if len(intervals) > maxDisplay {
		fmt.Printf("   ... and %d more\n", len(intervals)-maxDisplay)
	}
}

func printUsage() {
	fmt.Println("AcousticSpot - Reference Clip Locator CLI")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  -config <path>     YAML config file (env: ACOUSTIC_CONFIG)")
	fmt.Println("  -temp <dir>        Temporary directory for audio conversion (env: ACOUSTIC_TEMP_DIR)")
	fmt.Println("  -rate <hz>         Audio sample rate (default: 16000)")
	fmt.Println("  -workers <n>       Parallel scan workers (default: one per CPU)")
	fmt.Println("\nUsage:")
	fmt.Println("  acousticSpot [global-options] scan -i <input> -r <reference> -s <percent> [-st 50] [-o match_log.txt] [-gap 3000 -merged <path>]")
	fmt.Println("  acousticSpot [global-options] merge -i <log> -o <out> [-gap_ms 3000]")
	fmt.Println("  acousticSpot [global-options] spectrogram <audio> [-o <png>]")
	fmt.Println("\nExamples:")
	fmt.Println("  # Find a horn in a recording")
	fmt.Println("  acousticSpot scan -i train.mp3 -r horn.wav -s 70")
	fmt.Println()
	fmt.Println("  # Collapse nearby matches into events")
	fmt.Println("  acousticSpot merge -i match_log.txt -o events.txt -gap_ms 3000")
	fmt.Println()
	fmt.Println("  # Look at the reference clip")
	fmt.Println("  acousticSpot spectrogram horn.wav -o horn.png")
}
