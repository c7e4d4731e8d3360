// Package seqio streams raw DNA sequences from a FASTA or FASTQ file for
// cmd/cdbg to feed into the compactor/partitioner. Adapted from the
// teacher's fastq.go ReadFastQ: same bufio.Scanner state machine and
// channel-based delivery, generalized to also accept FASTA and to return
// errors instead of calling DIE_ON_ERR (a library never exits the
// process; see internal/cdbgerr).
package seqio

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// scanState mirrors the teacher's BETWEEN/INSEQ/INQUALS state machine;
// FASTA files never enter inQuals.
type scanState int

const (
	between scanState = iota
	inSeq
	inQuals
)

// Stream opens path and sends each record's sequence (uppercase, unlike
// the teacher's RemoveNs this package does NOT rewrite ambiguous bases --
// the engine's own InvalidSequence check is the validation boundary) on
// out, closing out when done or on error. Call from a goroutine; read err
// after out closes.
func Stream(path string, out chan<- string) error {
	defer close(out)
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "seqio: open %s", path)
	}
	defer f.Close()

	state := between
	var seq, quals []byte

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		r := strings.TrimSpace(strings.ToUpper(scanner.Text()))
		if len(r) == 0 {
			continue
		}
		switch {
		case state == between && r[0] == '>':
			seq = seq[:0]
			state = inSeq

		case state == between && r[0] == '@':
			seq = seq[:0]
			quals = quals[:0]
			state = inSeq

		case state == inSeq && r[0] == '+':
			state = inQuals

		case state == inSeq && r[0] == '>':
			out <- string(seq)
			seq = seq[:0]
			state = inSeq

		case state == inSeq:
			seq = append(seq, []byte(r)...)

		case state == inQuals:
			quals = append(quals, []byte(r)...)
			if len(quals) >= len(seq) {
				state = between
				out <- string(seq)
			}
		}
	}
	if state == inSeq && len(seq) > 0 {
		// trailing FASTA record with no closing '>' ever seen
		out <- string(seq)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "seqio: read %s", path)
	}
	return nil
}
