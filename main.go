package main

import (
	"fmt"
	"math"
	"os"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/vroland/gpusat/counter"
	"github.com/vroland/gpusat/decomp"
)

func main() {
	var (
		tdPath          string
		cnfPath         string
		combineWidth    int
		maxBag          int
		dataStructure   string
		weighted        bool
		verbose         bool
		maxMemoryBuffer int64
	)
	flag.StringVarP(&tdPath, "decomposition", "f", "", "path to the tree decomposition (.td)")
	flag.StringVarP(&cnfPath, "formula", "s", "", "path to the CNF formula")
	flag.IntVarP(&combineWidth, "combineWidth", "w", 20, "maximum width up to which adjacent bags are combined")
	flag.IntVarP(&maxBag, "maxBagSize", "m", 60, "maximum number of variables per bag")
	flag.StringVar(&dataStructure, "dataStructure", "array", "solution table layout (array|tree)")
	flag.BoolVar(&weighted, "weighted", false, "use the formula's literal weights")
	flag.BoolVarP(&verbose, "verbose", "v", false, "print progress and statistics")
	flag.Int64Var(&maxMemoryBuffer, "maxMemoryBuffer", 64<<20, "bytes per solution table fragment")
	flag.Parse()

	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	if tdPath == "" || cnfPath == "" {
		fmt.Fprintf(os.Stderr, "Syntax : %s -f <decomposition.td> -s <formula.cnf> [options]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	var ds counter.DataStructure
	switch dataStructure {
	case "array":
		ds = counter.ArrayStructure
	case "tree":
		ds = counter.TreeStructure
	default:
		log.Errorf("unknown data structure %q, expected array or tree", dataStructure)
		os.Exit(1)
	}

	f, err := parseFormula(cnfPath)
	if err != nil {
		log.WithError(err).Error("could not parse formula")
		os.Exit(1)
	}
	root, err := parseDecomposition(tdPath, combineWidth, maxBag)
	if err != nil {
		log.WithError(err).Error("could not parse decomposition")
		os.Exit(1)
	}

	s := counter.New(f, counter.SolveConfig{
		DataStructure:   ds,
		Weighted:        weighted,
		Trace:           verbose,
		MaxBag:          maxBag,
		MaxMemoryBuffer: maxMemoryBuffer,
	})
	res, err := s.Solve(root)
	if err != nil {
		log.WithError(err).Error("solve failed")
		os.Exit(1)
	}

	if verbose {
		st := s.Stats()
		fmt.Printf("c join passes: %d\n", st.NumJoin)
		fmt.Printf("c introduce-forget passes: %d\n", st.NumIntroduceForget)
		fmt.Printf("c max table size: %d\n", st.MaxTableSize)
	}
	if res.Sat {
		fmt.Println("s SATISFIABLE")
	} else {
		fmt.Println("s UNSATISFIABLE")
	}
	kind := "mc"
	if weighted && f.Weighted() {
		kind = "wmc"
	}
	if v := res.Value(); math.IsInf(v, 0) {
		fmt.Printf("s %s %v*2^%d\n", kind, res.Count, res.Exponent)
	} else {
		fmt.Printf("s %s %v\n", kind, v)
	}
}

func parseFormula(path string) (*counter.Formula, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return counter.ParseCNF(fd)
}

func parseDecomposition(path string, combineWidth, maxBag int) (*decomp.Node, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	d, err := decomp.ParseTD(fd)
	if err != nil {
		return nil, err
	}
	return decomp.Preprocess(d, combineWidth, maxBag)
}
