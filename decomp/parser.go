package decomp

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseTD parses a tree decomposition in the PACE 2017 .td format: an
// "s td <#bags> <max bag size> <#vars>" header, one "b <id> <vars...>" line
// per bag and one "<id> <id>" line per edge. Comment lines start with 'c'.
func ParseTD(rd io.Reader) (*Decomposition, error) {
	var (
		d       *Decomposition
		scanner = bufio.NewScanner(rd)
		lineNum int
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == 'c' {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "s":
			if d != nil {
				return nil, errors.Errorf("line %d: duplicate solution header", lineNum)
			}
			if len(fields) != 5 || fields[1] != "td" {
				return nil, errors.Errorf("line %d: invalid header %q", lineNum, line)
			}
			nbBags, err := strconv.Atoi(fields[2])
			if err != nil || nbBags < 1 {
				return nil, errors.Errorf("line %d: invalid bag count %q", lineNum, fields[2])
			}
			width, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, errors.Errorf("line %d: invalid width %q", lineNum, fields[3])
			}
			nbVars, err := strconv.Atoi(fields[4])
			if err != nil || nbVars < 0 {
				return nil, errors.Errorf("line %d: invalid variable count %q", lineNum, fields[4])
			}
			d = &Decomposition{NbVars: nbVars, Width: width, Bags: make([][]int64, nbBags)}
		case "b":
			if d == nil {
				return nil, errors.Errorf("line %d: bag before header", lineNum)
			}
			if len(fields) < 2 {
				return nil, errors.Errorf("line %d: invalid bag line %q", lineNum, line)
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil || id < 1 || id > len(d.Bags) {
				return nil, errors.Errorf("line %d: invalid bag id %q", lineNum, fields[1])
			}
			if d.Bags[id-1] != nil {
				return nil, errors.Errorf("line %d: duplicate bag %d", lineNum, id)
			}
			vars := make([]int64, 0, len(fields)-2)
			for _, fld := range fields[2:] {
				v, err := strconv.ParseInt(fld, 10, 64)
				if err != nil || v < 1 {
					return nil, errors.Errorf("line %d: invalid variable %q in bag %d", lineNum, fld, id)
				}
				vars = append(vars, v)
				if int(v) > d.NbVars {
					d.NbVars = int(v)
				}
			}
			d.Bags[id-1] = vars
		default:
			if d == nil {
				return nil, errors.Errorf("line %d: edge before header", lineNum)
			}
			if len(fields) != 2 {
				return nil, errors.Errorf("line %d: invalid edge line %q", lineNum, line)
			}
			a, err := strconv.Atoi(fields[0])
			if err != nil || a < 1 || a > len(d.Bags) {
				return nil, errors.Errorf("line %d: invalid edge endpoint %q", lineNum, fields[0])
			}
			b, err := strconv.Atoi(fields[1])
			if err != nil || b < 1 || b > len(d.Bags) {
				return nil, errors.Errorf("line %d: invalid edge endpoint %q", lineNum, fields[1])
			}
			d.Edges = append(d.Edges, [2]int{a, b})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read decomposition")
	}
	if d == nil {
		return nil, errors.New("no solution header found")
	}
	for i := range d.Bags {
		if d.Bags[i] == nil {
			d.Bags[i] = []int64{}
		}
	}
	return d, nil
}
