package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/mastercactapus/planarity/calibration"
	"github.com/mastercactapus/planarity/chart"
	"github.com/mastercactapus/planarity/config"
	"github.com/mastercactapus/planarity/planarity"
)

func main() {
	log.SetFlags(log.Lshortfile)

	cfgPath := flag.String("config", "", "JSON config file.")
	in := flag.String("in", "", "Input CSV file.")
	out := flag.String("out", "", "Write the augmented table here ('-' for stdout).")
	plotDir := flag.String("plot", ".", "Directory for the dist plot (empty to disable).")
	mode := flag.String("mode", "", "Input layout: wheels or levels.")
	policy := flag.String("policy", "", "Row error policy: halt or skip.")
	workers := flag.Int("workers", 0, "Number of rows evaluated concurrently.")
	aggregate := flag.Bool("aggregate", false, "Bin rows by travelled distance before evaluating.")
	interval := flag.Float64("interval", 0, "Aggregation interval.")
	method := flag.String("method", "", "Aggregation method: median, mean or ema.")
	calib := flag.String("calibration", "", "JSON file of sensor zero-offset measurements.")
	addr := flag.String("addr", "", "Serve the HTTP API on this address.")
	dir := flag.String("dir", "./data", "Data directory to use.")
	serialPort := flag.String("serial", "", "Read live samples from this serial port.")
	baud := flag.Int("baud", 115200, "Serial baud rate.")
	wsURL := flag.String("ws", "", "Read live samples from this websocket bridge.")
	flag.Parse()

	cfg := &config.Config{}
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	// explicit flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = mode
		case "policy":
			cfg.ErrorPolicy = policy
		case "workers":
			cfg.Workers = workers
		case "aggregate":
			cfg.Aggregate = aggregate
		case "interval":
			cfg.Interval = interval
		case "method":
			cfg.Method = method
		case "calibration":
			cfg.Calibration = calib
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	offsetter, err := loadOffsetter(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var a *api
	if *addr != "" {
		a = newAPI(cfg, offsetter, *dir)
		defer a.Close()
		go func() {
			log.Println("Listening on", *addr)
			err := http.ListenAndServe(*addr, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "*")
				log.Printf("%s %s - %s", req.Method, req.URL.Path, req.RemoteAddr)
				a.ServeHTTP(w, req)
			}))
			if err != nil {
				log.Fatal(err)
			}
		}()
	}

	switch {
	case *serialPort != "" || *wsURL != "":
		err = runLive(ctx, cfg, offsetter, a, *serialPort, *baud, *wsURL)
	case *in != "":
		err = runFile(ctx, cfg, offsetter, *in, *out, *plotDir)
	case a != nil:
		<-ctx.Done()
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runFile(ctx context.Context, cfg *config.Config, offsetter calibration.ZOffsetter, in, out, plotDir string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	ecfg := cfg.EvaluatorConfig()
	ecfg.ZOffsetter = offsetter
	res, err := analyze(ctx, f, cfg, planarity.New(ecfg))
	if res == nil {
		return err
	}
	if err != nil {
		log.Printf("ERROR: %d row(s) skipped", countFailed(res.results))
	}

	if out != "" {
		var w io.Writer = os.Stdout
		if out != "-" {
			of, err := os.Create(out)
			if err != nil {
				return err
			}
			defer of.Close()
			w = of
		}
		err = res.write(w)
		if err != nil {
			return err
		}
	}

	if plotDir != "" {
		name := filepath.Join(plotDir, chart.FileName(in))
		err = chart.Save(name, res.results, in, chart.DefaultOptions)
		if err != nil {
			return err
		}
		log.Println("Saved plot to", name)
	}

	log.Printf("Processed %d rows from %s (max dist %s)", len(res.results), in, maxDist(res.results))
	return nil
}

func countFailed(results []planarity.Result) (n int) {
	for _, r := range results {
		if !r.Valid() {
			n++
		}
	}
	return n
}

func maxDist(results []planarity.Result) string {
	var best float64
	var ok bool
	for _, r := range results {
		if r.Valid() && (!ok || r.Dist > best) {
			best, ok = r.Dist, true
		}
	}
	if !ok {
		return "n/a"
	}
	return strconv.FormatFloat(best, 'f', 3, 64)
}
