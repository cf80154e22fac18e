package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"

	"github.com/mastercactapus/planarity/calibration"
	"github.com/mastercactapus/planarity/config"
	"github.com/mastercactapus/planarity/feed"
	"github.com/mastercactapus/planarity/planarity"
	"github.com/mastercactapus/planarity/table"
)

type liveSource interface {
	planarity.Reader
	io.Closer
}

func openSource(serialPort string, baud int, wsURL string) (liveSource, error) {
	if serialPort != "" {
		s, err := feed.OpenSerial(serialPort, baud)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	if wsURL != "" {
		return feed.NewWSSource(wsURL), nil
	}
	return nil, errors.New("no live source configured")
}

// runLive evaluates samples from a serial port or websocket bridge until
// the source ends or ctx is cancelled, writing result rows to stdout and
// publishing them to the API, if running.
func runLive(ctx context.Context, cfg *config.Config, offsetter calibration.ZOffsetter, a *api, serialPort string, baud int, wsURL string) error {
	src, err := openSource(serialPort, baud, wsURL)
	if err != nil {
		return err
	}

	ecfg := cfg.EvaluatorConfig()
	ecfg.ZOffsetter = offsetter
	return streamLive(ctx, planarity.New(ecfg), src, a, os.Stdout)
}

func streamLive(ctx context.Context, e *planarity.Evaluator, src liveSource, a *api, w io.Writer) error {
	go func() {
		<-ctx.Done()
		src.Close()
	}()
	defer src.Close()

	rw := table.NewResultWriter(w)
	defer rw.Flush()

	err := e.Stream(ctx, src, func(r planarity.Result) error {
		if a != nil {
			a.publish(r)
		}
		err := rw.Write(r)
		if err != nil {
			return err
		}
		return rw.Flush()
	})
	// closing the source on cancel interrupts a blocked read with its own error
	if ctx.Err() != nil {
		log.Println("Stopped.")
		return nil
	}
	return err
}
