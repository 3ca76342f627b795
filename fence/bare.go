// bare.go - Detector fuer nackte JSON-Payloads (ohne Marker)
package fence

import "strings"

type bareDetector struct {
	opts    Options
	state   ScanState
	buf     []byte
	payload strings.Builder
}

func newBareDetector(opts Options) *bareDetector {
	return &bareDetector{opts: opts, state: SeekingStart{}}
}

func (d *bareDetector) AddChunk(s string) {
	d.buf = append(d.buf, s...)
}

func (d *bareDetector) Buffer() string {
	return string(d.buf)
}

func (d *bareDetector) Flush() string {
	s := string(d.buf)
	d.buf = d.buf[:0]
	return s
}

func (d *bareDetector) Reset() {
	if _, ok := d.state.(Completed); !ok {
		return
	}
	d.state = SeekingStart{}
	d.payload.Reset()
}

func (d *bareDetector) Process() Result {
	switch s := d.state.(type) {
	case Completed:
		return Result{Complete: true}
	case Failed:
		return passthrough(&d.buf, s.Reason)
	}

	// Praefix-Bytes werden sofort freigegeben, es gibt keinen Marker,
	// der an einer Chunk-Grenze zerteilt sein koennte.
	var prose, i int
	for i < len(d.buf) && !terminal(d.state) {
		c := d.buf[i]
		prev := d.state
		next, consumed := Step(d.state, c, d.opts.MaxPrefix)
		if !consumed {
			break
		}
		d.state = next
		i++

		if _, seeking := prev.(SeekingStart); seeking {
			if _, stillSeeking := next.(SeekingStart); stillSeeking {
				prose = i
				continue
			}
		}
		d.payload.WriteByte(c)
	}

	switch s := d.state.(type) {
	case Failed:
		return passthrough(&d.buf, s.Reason)
	case Completed:
		delta := string(d.buf[:i])
		d.buf = d.buf[i:]
		return Result{
			Delta:    delta,
			Content:  delta[:prose],
			Payload:  d.payload.String(),
			Complete: true,
		}
	}

	delta := string(d.buf[:i])
	d.buf = d.buf[i:]
	_, waiting := d.state.(SeekingStart)
	return Result{
		Delta:           delta,
		Content:         delta[:prose],
		WaitingForStart: waiting,
	}
}
