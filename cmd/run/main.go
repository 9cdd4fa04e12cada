package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"spinchain"
	"spinchain/store"
)

const (
	fnameDB   = "runs.db"
	fnamePlot = "entropy.png"
)

var (
	runDir  = flag.String("d", filepath.Join("runs", "spinchain"), "run directory")
	cfgPath = flag.String("c", "", "optional TOML config file")
	maxL    = flag.Int("L", 12, "maximum chain length")
)

// solve computes the ground state energy and half-chain entanglement entropy
// of the transverse field Ising chain of length l at field strength h.
func solve(rt *spinchain.Runtime, l int, h float64) (store.Result, error) {
	r := store.Result{L: l, H: h}

	H, err := spinchain.TransverseFieldIsing(l, h)
	if err != nil {
		return store.Result{}, errors.Wrap(err, "")
	}
	opt := spinchain.NewEigsolveOptions().Vectors(true)
	evals, evecs, err := spinchain.Eigsolve(rt, H, opt)
	if err != nil {
		return store.Result{}, errors.Wrap(err, "")
	}
	r.Energy = evals[0]

	keep := make([]int, 0, l/2)
	for i := 0; i < l/2; i++ {
		keep = append(keep, i)
	}
	entropy, ok, err := spinchain.EntanglementEntropy(rt, evecs[0], keep)
	if err != nil {
		return store.Result{}, errors.Wrap(err, "")
	}
	if ok {
		r.Entropy = entropy
	}
	return r, nil
}

// plotEntropy draws the half-chain entropy against chain length, one line per
// field strength.
func plotEntropy(fpath string, results []store.Result) error {
	byH := make(map[float64]plotter.XYs)
	hs := make([]float64, 0)
	for _, r := range results {
		if _, ok := byH[r.H]; !ok {
			hs = append(hs, r.H)
		}
		byH[r.H] = append(byH[r.H], plotter.XY{X: float64(r.L), Y: r.Entropy})
	}

	p := plot.New()
	p.Title.Text = "half-chain entanglement entropy"
	p.X.Label.Text = "L"
	p.Y.Label.Text = "S"
	for _, h := range hs {
		if err := plotutil.AddLinePoints(p, fmt.Sprintf("h=%g", h), byH[h]); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, fpath); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	rt := spinchain.NewRuntime()
	var cfg *spinchain.Config
	if *cfgPath != "" {
		c, err := spinchain.LoadConfig(*cfgPath)
		if err != nil {
			return errors.Wrap(err, "")
		}
		cfg = &c
	}
	if err := rt.Initialize(cfg); err != nil {
		return errors.Wrap(err, "")
	}

	if err := os.MkdirAll(*runDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}
	db, err := store.Open(filepath.Join(*runDir, fnameDB))
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer db.Close()

	// Sweep around the critical point h=1.
	hs := []float64{0.5, 1, 2}
	for l := 2; l <= *maxL; l += 2 {
		for _, h := range hs {
			if _, ok, err := db.Get(l, h); err != nil {
				return errors.Wrap(err, "")
			} else if ok {
				continue
			}

			r, err := solve(rt, l, h)
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("%d %f", l, h))
			}
			if err := db.Put(r); err != nil {
				return errors.Wrap(err, "")
			}
			log.Printf("L=%d h=%f e0=%f s=%f", l, h, r.Energy, r.Entropy)
		}
	}

	// Gather results and print them.
	results, err := db.Gather()
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Printf("l,h,e0,s\n")
	for _, r := range results {
		fmt.Printf("%d,%f,%f,%f\n", r.L, r.H, r.Energy, r.Entropy)
	}
	if err := plotEntropy(filepath.Join(*runDir, fnamePlot), results); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
