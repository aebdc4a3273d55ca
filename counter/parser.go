package counter

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// readInt reads an int from r.
// 'b' is the last read byte. It can be a space, a '-' or a digit.
// The int can be negated.
// All spaces before the int value are ignored.
// Can return EOF.
func readInt(b *byte, r *bufio.Reader) (res int64, err error) {
	for err == nil && isSpace(*b) {
		*b, err = r.ReadByte()
	}
	if err == io.EOF {
		return res, io.EOF
	}
	if err != nil {
		return res, errors.Wrap(err, "could not read digit")
	}
	neg := int64(1)
	if *b == '-' {
		neg = -1
		*b, err = r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "cannot read int")
		}
	}
	for err == nil {
		if *b < '0' || *b > '9' {
			return 0, errors.Errorf("cannot read int: %q is not a digit", *b)
		}
		res = 10*res + int64(*b-'0')
		*b, err = r.ReadByte()
		if isSpace(*b) {
			break
		}
	}
	res *= neg
	return res, err
}

func parseCNFHeader(r *bufio.Reader) (nbVars, nbClauses int, err error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, 0, errors.Wrap(err, "cannot read header")
	}
	fields := strings.Fields(line)
	if len(fields) < 3 || fields[0] != "cnf" {
		return 0, 0, errors.Errorf("invalid syntax %q in header", line)
	}
	nbVars, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, errors.Errorf("nbvars not an int : %q", fields[1])
	}
	nbClauses, err = strconv.Atoi(fields[2])
	if err != nil {
		return 0, 0, errors.Errorf("nbClauses not an int : %q", fields[2])
	}
	return nbVars, nbClauses, nil
}

// parseWeight handles a Cachet-style weight line "w <var> <weight>", already
// stripped of its leading 'w'. A weight of -1 leaves the variable unweighted,
// any other weight p sets the positive literal to p and the negative one to
// 1-p.
func parseWeight(line string, f *Formula) error {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return errors.Errorf("invalid syntax %q in weight line", line)
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil || v <= 0 || v > f.NbVars {
		return errors.Errorf("invalid variable %q in weight line", fields[0])
	}
	p, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return errors.Errorf("invalid weight %q for variable %d", fields[1], v)
	}
	if f.Weights == nil {
		f.Weights = make([]float64, 2*(f.NbVars+1))
		for i := range f.Weights {
			f.Weights[i] = 1
		}
	}
	if p != -1 {
		f.Weights[2*v] = p
		f.Weights[2*v+1] = 1 - p
	}
	return nil
}

// ParseCNF parses a DIMACS CNF file, with optional Cachet weight lines, and
// returns the corresponding Formula.
func ParseCNF(rd io.Reader) (*Formula, error) {
	r := bufio.NewReader(rd)
	var (
		f         Formula
		nbClauses int
		sawHeader bool
	)
	b, err := r.ReadByte()
	for err == nil {
		switch {
		case b == 'c': // Ignore comment
			b, err = r.ReadByte()
			for err == nil && b != '\n' {
				b, err = r.ReadByte()
			}
		case b == 'p': // Parse header
			f.NbVars, nbClauses, err = parseCNFHeader(r)
			if err != nil {
				return nil, errors.Wrap(err, "cannot parse CNF header")
			}
			f.Clauses = make([]Clause, 0, nbClauses)
			sawHeader = true
		case b == 'w': // Weight line
			if !sawHeader {
				return nil, errors.New("weight line before CNF header")
			}
			line, err := r.ReadString('\n')
			if err != nil && err != io.EOF {
				return nil, errors.Wrap(err, "cannot read weight line")
			}
			if err := parseWeight(line, &f); err != nil {
				return nil, err
			}
		case isSpace(b):
		default:
			if !sawHeader {
				return nil, errors.New("clause before CNF header")
			}
			lits := make(Clause, 0, 3) // Make room for some lits to improve performance
			for {
				val, err := readInt(&b, r)
				if err == io.EOF {
					if len(lits) != 0 { // This is not a trailing space at the end...
						return nil, errors.New("unfinished clause while EOF found")
					}
					break // When there are only several useless spaces at the end of the file, that is ok
				}
				if err != nil {
					return nil, errors.Wrap(err, "cannot parse clause")
				}
				if val == 0 {
					sort.Slice(lits, func(i, j int) bool { return lits[i].Var() < lits[j].Var() })
					f.Clauses = append(f.Clauses, lits)
					break
				}
				if val > int64(f.NbVars) || -val > int64(f.NbVars) {
					return nil, errors.Errorf("invalid literal %d for problem with %d vars only", val, f.NbVars)
				}
				lits = append(lits, Lit(val))
			}
		}
		b, err = r.ReadByte()
	}
	if err != io.EOF {
		return nil, err
	}
	if !sawHeader {
		return nil, errors.New("no CNF header found")
	}
	return &f, nil
}
