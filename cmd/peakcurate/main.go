// Command peakcurate detects and measures peaks in an electrophysiology
// recording and prints or exports the curated peak table.
//
// Usage:
//
//	peakcurate [flags] <recording.csv|recording.edf>
//
// Examples:
//
//	peakcurate trace.csv
//	peakcurate -hp 1 -notch 50 -prom 0.1 trace.csv
//	peakcurate -segment 3 -channel 1 sweeps.edf
//	peakcurate -exclude 2,5 -o peaks.csv trace.csv
//	peakcurate -band 4,30 trace.csv
//	peakcurate -info trace.csv
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-ephys/analysis"
	"github.com/cwbudde/algo-ephys/detect"
	"github.com/cwbudde/algo-ephys/measure"
)

func main() {
	hp := flag.Float64("hp", 0.2, "high-pass cutoff in Hz")
	notch := flag.Float64("notch", 0, "notch frequency in Hz (0 disables)")
	notchQ := flag.Float64("notch-q", 30, "notch quality factor")
	smooth := flag.Int("smooth", 0, "Savitzky-Golay window in samples (0 disables, forced odd)")
	prom := flag.Float64("prom", 0.05, "minimum peak prominence")
	dist := flag.Float64("dist", 50, "minimum inter-peak distance in ms")
	polarity := flag.String("polarity", "positive", "peak polarity: positive, negative or both")
	minWidth := flag.Float64("min-width", 5, "minimum FWHM in ms")
	maxWidth := flag.Float64("max-width", 500, "maximum FWHM in ms")
	units := flag.String("units", measure.UnitAuto, "amplitude units: Auto, µV, mV or V")
	trace := flag.Int("trace", 0, "trace index for flat recordings")
	channel := flag.Int("channel", 0, "channel index for segmented recordings")
	segment := flag.Int("segment", 0, "segment index for segmented recordings")
	exclude := flag.String("exclude", "", "comma-separated candidate positions to exclude")
	band := flag.String("band", "", "print mean band power for a low,high Hz range")
	output := flag.String("o", "", "export the peak table to this CSV file")
	info := flag.Bool("info", false, "print working-signal statistics instead of peaks")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: peakcurate [flags] <recording.csv|recording.edf>\n\n")
		fmt.Fprintf(os.Stderr, "Detects and measures peaks in an electrophysiology recording.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  peakcurate trace.csv\n")
		fmt.Fprintf(os.Stderr, "  peakcurate -hp 1 -notch 50 -prom 0.1 trace.csv\n")
		fmt.Fprintf(os.Stderr, "  peakcurate -segment 3 -channel 1 sweeps.edf\n")
		fmt.Fprintf(os.Stderr, "  peakcurate -exclude 2,5 -o peaks.csv trace.csv\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	pol, err := parsePolarity(*polarity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = logger.Sync() }()
	}

	engine := analysis.New(analysis.WithLogger(logger))

	params := analysis.Params{
		Processing: analysis.ProcessingConfig{
			HighpassHz:    *hp,
			NotchEnabled:  *notch > 0,
			NotchFreqHz:   *notch,
			NotchQ:        *notchQ,
			SmoothEnabled: *smooth > 0,
			SmoothWindow:  *smooth,
		},
		Detection: detect.Config{
			Prominence:    *prom,
			MinDistanceMS: *dist,
			Polarity:      pol,
			MinWidthMS:    *minWidth,
			MaxWidthMS:    *maxWidth,
		},
		Units: *units,
	}

	if err := engine.Load(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := engine.Select(*trace, *channel, *segment); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := engine.SetParams(params); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	positions, err := parseExclusions(*exclude)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	for _, pos := range positions {
		if err := engine.Toggle(pos); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	if *info {
		printInfo(engine)
		return
	}

	if *band != "" {
		if err := printBandPower(engine, *band); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *output != "" {
		if err := exportCSV(engine, *output); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d peaks to %s\n", len(engine.State().Curated), *output)
		return
	}

	printPeaks(engine)
}

func parsePolarity(name string) (detect.Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "positive":
		return detect.Positive, nil
	case "negative":
		return detect.Negative, nil
	case "both":
		return detect.Both, nil
	default:
		return 0, fmt.Errorf("unknown polarity %q (use positive, negative or both)", name)
	}
}

func parseExclusions(list string) ([]int, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	var positions []int
	for _, field := range strings.Split(list, ",") {
		pos, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("invalid exclusion %q: %w", field, err)
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

func printPeaks(engine *analysis.Engine) {
	st := engine.State()

	desc := analysis.FilterDescription(engine.Params().Processing, engine.Params().Detection)
	fmt.Printf("%s: %d candidates, %d curated (%s, timing: %s)\n\n",
		engine.Selection().Recording.Source, len(st.Candidates), len(st.Curated), desc, st.TimingMethod)

	if len(st.Measurements) == 0 {
		fmt.Println("No peaks detected.")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Peak\tIndex\tTime rel [s]\tTime abs [s]\tAmplitude [%s]\tWidth [ms]\n", st.Unit)
	fmt.Fprintf(tw, "----\t-----\t------------\t------------\t-------------\t----------\n")
	for i, m := range st.Measurements {
		fmt.Fprintf(tw, "%d\t%d\t%.4f\t%.4f\t%.4f\t%.2f\n",
			i, m.SampleIndex, m.RelativeTime, m.AbsoluteTime, m.Amplitude, m.WidthMS)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printInfo(engine *analysis.Engine) {
	summary, err := engine.Stats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	st := engine.State()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Source\t%s\n", engine.Selection().Recording.Source)
	fmt.Fprintf(tw, "Sampling rate\t%g Hz\n", st.SampleRate)
	fmt.Fprintf(tw, "Samples\t%d\n", summary.Length)
	fmt.Fprintf(tw, "Range\t%.6f to %.6f\n", summary.Min, summary.Max)
	fmt.Fprintf(tw, "Mean\t%.6f\n", summary.Mean)
	fmt.Fprintf(tw, "Std\t%.6f\n", summary.Std)
	fmt.Fprintf(tw, "RMS\t%.6f\n", summary.RMS)
	fmt.Fprintf(tw, "Units suggestion\t%s\n", summary.SuggestedUnit())
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printBandPower(engine *analysis.Engine, spec string) error {
	low, high, err := parseBand(spec)
	if err != nil {
		return err
	}

	power, err := engine.BandPower(low, high)
	if err != nil {
		return err
	}

	res, err := engine.Spectrogram()
	if err != nil {
		return err
	}

	fmt.Printf("Band power %g-%g Hz (%d time bins)\n\n", low, high, len(power))
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Time [s]\tPower\n")
	fmt.Fprintf(tw, "--------\t-----\n")
	for i, p := range power {
		fmt.Fprintf(tw, "%.3f\t%.6g\n", res.Times[i], p)
	}
	return tw.Flush()
}

func parseBand(spec string) (low, high float64, err error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("band must be low,high in Hz, got %q", spec)
	}

	low, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid band low %q: %w", parts[0], err)
	}
	high, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid band high %q: %w", parts[1], err)
	}
	if high < low {
		return 0, 0, fmt.Errorf("band high %g below low %g", high, low)
	}

	return low, high, nil
}

func exportCSV(engine *analysis.Engine, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	err = analysis.WriteCSV(f, engine.Selection(), engine.Params(), engine.State(), engine.Removed(), time.Now())
	if err != nil {
		return err
	}

	return f.Sync()
}
