// Command pixlift upscales an image from the command line.
//
// Small outputs are written whole; outputs too large to materialize are
// chunked, and -chunk extracts a window from them. Either way -preview-out
// saves the bounded preview.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pixlift/pixlift"
)

func main() {
	var (
		scale      = flag.Float64("scale", 2.0, "scale factor, must be > 0")
		out        = flag.String("out", "out.png", "output file for direct results or -chunk reads")
		previewOut = flag.String("preview-out", "", "optional output file for the preview")
		filterName = flag.String("filter", "catmullrom", "resampling filter: nearest, bilinear, catmullrom, lanczos")
		strategy   = flag.String("strategy", "lazy", "chunked materialization: lazy or eager")
		chunk      = flag.String("chunk", "", "region to extract from chunked results, as x,y,w,h")
		workers    = flag.Int("workers", 0, "tile workers, 0 means one per CPU")
		verbose    = flag.Bool("v", false, "log processing details to stderr")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pixlift [flags] input-image")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if *verbose {
		l := logrus.New()
		l.SetLevel(logrus.DebugLevel)
		pixlift.SetLogger(l)
	}

	if err := run(flag.Arg(0), *scale, *out, *previewOut, *filterName, *strategy, *chunk, *workers, *verbose); err != nil {
		log.Fatalf("pixlift: %v", err)
	}
}

func run(input string, scale float64, out, previewOut, filterName, strategyName, chunkSpec string, workers int, verbose bool) error {
	filter, err := pixlift.ParseFilter(filterName)
	if err != nil {
		return err
	}

	var strategy pixlift.Strategy
	switch strings.ToLower(strategyName) {
	case "lazy":
		strategy = pixlift.StrategyLazy
	case "eager":
		strategy = pixlift.StrategyEager
	default:
		return fmt.Errorf("unknown strategy %q", strategyName)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	src, err := pixlift.DecodeBytes(data)
	if err != nil {
		return err
	}

	eng := pixlift.New(
		pixlift.WithStrategy(strategy),
		pixlift.WithWorkers(workers),
	)
	defer eng.Close()

	req := pixlift.Request{
		ScaleFactor: scale,
		Filter:      filter,
	}
	if verbose {
		req.OnProgress = func(done float64, message string) {
			log.Printf("%3.0f%% %s", done*100, message)
		}
	}

	res, err := eng.ProcessEx(context.Background(), src, req)
	if err != nil {
		return err
	}
	defer res.Close()

	switch {
	case res.Kind() == pixlift.KindDirect:
		buf, _ := res.Direct()
		if err := savePNG(out, buf); err != nil {
			return err
		}
		log.Printf("wrote %s (%dx%d, %d stages, %s)",
			out, buf.Width(), buf.Height(), res.Stats.Stages, res.Elapsed)

	case chunkSpec != "":
		img, _ := res.Chunked()
		x, y, w, h, err := parseChunk(chunkSpec)
		if err != nil {
			return err
		}
		buf, err := img.GetChunk(context.Background(), x, y, w, h)
		if err != nil {
			return err
		}
		if err := savePNG(out, buf); err != nil {
			return err
		}
		log.Printf("wrote %s (%dx%d window at %d,%d of %dx%d logical, %d tiles)",
			out, w, h, x, y, res.Width(), res.Height(), res.Stats.Tiles)

	default:
		log.Printf("output is %dx%d across %d tiles, too large to write whole; use -chunk x,y,w,h",
			res.Width(), res.Height(), res.Stats.Tiles)
	}

	if previewOut != "" && res.Preview != nil {
		if err := savePNG(previewOut, res.Preview.Buffer); err != nil {
			return err
		}
		log.Printf("wrote preview %s (%dx%d, scale %.4f)",
			previewOut, res.Preview.Buffer.Width(), res.Preview.Buffer.Height(), res.Preview.Scale())
	}
	return nil
}

// parseChunk parses "x,y,w,h".
func parseChunk(s string) (x, y, w, h int, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("chunk spec %q: want x,y,w,h", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("chunk spec %q: %v", s, err)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}

func savePNG(path string, buf *pixlift.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, buf.NRGBA()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
