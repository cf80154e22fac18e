package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/mastercactapus/planarity/calibration"
	"github.com/mastercactapus/planarity/chart"
	"github.com/mastercactapus/planarity/config"
	"github.com/mastercactapus/planarity/planarity"
)

const maxBodySize = 64 << 20

type api struct {
	http.Handler
	cfg       *config.Config
	offsetter calibration.ZOffsetter
	dataDir   string
	sse       *sse.Server
}

func newAPI(cfg *config.Config, offsetter calibration.ZOffsetter, dir string) *api {
	r := mux.NewRouter()

	a := &api{
		Handler:   r,
		cfg:       cfg,
		offsetter: offsetter,
		dataDir:   dir,
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(io.Discard, "", 0),
		}),
	}

	fs := http.FileServer(http.Dir(dir))
	r.PathPrefix("/data/").Methods("GET", "HEAD").Handler(http.StripPrefix("/data", fs))
	r.PathPrefix("/data/").Methods("PUT").Handler(http.StripPrefix("/data", http.HandlerFunc(a.putFile)))
	r.PathPrefix("/data/").Methods("DELETE").Handler(http.StripPrefix("/data", http.HandlerFunc(a.deleteFile)))

	r.HandleFunc("/api/planarity", a.planarity).Methods("POST")
	r.HandleFunc("/api/plot", a.plot).Methods("POST")

	r.PathPrefix("/events/").Handler(a.sse)

	return a
}

func (a *api) Close() { a.sse.Shutdown() }

type progressEvent struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

func (a *api) send(channel string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("ERROR: marshal json: %+v", err)
		return
	}
	a.sse.SendMessage(channel, sse.SimpleMessage(string(data)))
}

func (a *api) progress(done, total int) {
	if total > 0 && done != total && done%100 != 0 {
		return
	}
	a.send("/events/progress", progressEvent{Done: done, Total: total})
}

func (a *api) publish(r planarity.Result) {
	a.send("/events/results", newResultJSON(r))
}

// requestConfig applies query overrides to a copy of the server config.
func (a *api) requestConfig(req *http.Request) (*config.Config, error) {
	cfg := *a.cfg
	q := req.URL.Query()

	str := func(name string, dst **string) {
		if v := q.Get(name); v != "" {
			*dst = &v
		}
	}
	str("mode", &cfg.Mode)
	str("method", &cfg.Method)
	str("policy", &cfg.ErrorPolicy)

	var err error
	num := func(name string, dst **float64) {
		v := q.Get(name)
		if v == "" || err != nil {
			return
		}
		var f float64
		f, err = strconv.ParseFloat(v, 64)
		*dst = &f
	}
	num("interval", &cfg.Interval)
	num("scale", &cfg.Scale)
	num("offset", &cfg.Offset)

	if v := q.Get("span"); v != "" && err == nil {
		var n int
		n, err = strconv.Atoi(v)
		cfg.EMASpan = &n
	}
	if v := q.Get("aggregate"); v != "" {
		agg := v == "1" || v == "true"
		cfg.Aggregate = &agg
	}
	if err != nil {
		return nil, err
	}

	return &cfg, cfg.Validate()
}

func (a *api) analyze(w http.ResponseWriter, req *http.Request) *analysis {
	cfg, err := a.requestConfig(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	ecfg := cfg.EvaluatorConfig()
	ecfg.ZOffsetter = a.offsetter
	ecfg.Progress = a.progress
	ecfg.Logf = func(string, ...interface{}) {}

	res, err := analyze(req.Context(), http.MaxBytesReader(w, req.Body, maxBodySize), cfg, planarity.New(ecfg))
	var inErr inputError
	switch {
	case errors.As(err, &inErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	case res == nil:
		log.Printf("ERROR: analyze: %+v", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return nil
	}
	return res
}

type resultJSON struct {
	Index     int                   `json:"index"`
	Travelled float64               `json:"travelled"`
	Heights   map[string]float64    `json:"heights"`
	Planes    map[string][4]float64 `json:"planes,omitempty"`
	Distances map[string]float64    `json:"distances,omitempty"`
	Dist      *float64              `json:"dist,omitempty"`
	Error     string                `json:"error,omitempty"`
}

func newResultJSON(r planarity.Result) resultJSON {
	res := resultJSON{
		Index:     r.Index,
		Travelled: r.Travelled,
		Heights:   make(map[string]float64, 4),
	}
	for _, w := range planarity.Wheels {
		res.Heights[w.String()] = r.Heights[w]
	}
	if !r.Valid() {
		res.Error = r.Err.Error()
		return res
	}

	res.Planes = make(map[string][4]float64, 4)
	res.Distances = make(map[string]float64, 4)
	for _, w := range planarity.Wheels {
		p := r.Planes[w]
		res.Planes[w.String()] = [4]float64{p.A, p.B, p.C, p.D}
		res.Distances[w.String()] = r.Distances[w]
	}
	dist := r.Dist
	res.Dist = &dist
	return res
}

func (a *api) planarity(w http.ResponseWriter, req *http.Request) {
	res := a.analyze(w, req)
	if res == nil {
		return
	}

	if strings.Contains(req.Header.Get("Accept"), "text/csv") {
		w.Header().Set("Content-Type", "text/csv")
		err := res.write(w)
		if err != nil {
			log.Println("ERROR: write csv:", err)
		}
		return
	}

	out := make([]resultJSON, len(res.results))
	for i, r := range res.results {
		out[i] = newResultJSON(r)
	}
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(out)
	if err != nil {
		log.Println("ERROR: encode:", err)
	}
}

func (a *api) plot(w http.ResponseWriter, req *http.Request) {
	res := a.analyze(w, req)
	if res == nil {
		return
	}

	title := req.URL.Query().Get("title")
	if title == "" {
		title = "planarity"
	}
	w.Header().Set("Content-Type", "image/png")
	err := chart.WriteTo(w, "png", res.results, title, chart.DefaultOptions)
	if err != nil {
		log.Printf("ERROR: plot: %+v", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	}
}

func safePath(base, name string) (bool, string) {
	if filepath.Separator != '/' && strings.ContainsRune(name, filepath.Separator) {
		log.Println("invalid path '" + name + "'")
		return false, ""
	}
	dir := string(base)
	if dir == "" {
		dir = "."
	}
	fullName := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+name)))
	return true, fullName
}

func (a *api) putFile(w http.ResponseWriter, req *http.Request) {
	ok, name := safePath(a.dataDir, req.URL.Path)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	err := os.MkdirAll(filepath.Dir(name), 0755)
	if err != nil {
		log.Printf("ERROR: mkdir '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
		return
	}
	f, err := os.Create(name)
	if err != nil {
		log.Printf("ERROR: create '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
		return
	}
	defer f.Close()
	_, err = io.Copy(f, http.MaxBytesReader(w, req.Body, maxBodySize))
	if err != nil {
		log.Printf("ERROR: write '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (a *api) deleteFile(w http.ResponseWriter, req *http.Request) {
	ok, name := safePath(a.dataDir, req.URL.Path)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	err := os.Remove(name)
	if os.IsNotExist(err) {
		http.NotFound(w, req)
		return
	}
	if err != nil {
		log.Printf("ERROR: delete '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
		return
	}
}
