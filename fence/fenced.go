// fenced.go - Detector fuer Marker-umschlossene Payloads
//
// Ablauf:
// - ausserhalb eines Blocks: fruehesten Start-Marker suchen, sonst den
//   moeglichen Marker-Anfang am Pufferende zurueckhalten
// - innerhalb eines Blocks: Inhalt inkrementell freigeben, nur einen
//   moeglichen Anfang des End-Markers zurueckhalten
// - End-Marker gefunden: Payload (inkl. Start- und End-Marker) liefern
package fence

import (
	"bytes"
	"strings"
)

type fencedDetector struct {
	opts Options
	buf  []byte

	inFence bool
	done    bool
	err     error
	bodyLen int
	payload strings.Builder
}

func newFencedDetector(opts Options) *fencedDetector {
	return &fencedDetector{opts: opts}
}

func (d *fencedDetector) AddChunk(s string) {
	d.buf = append(d.buf, s...)
}

func (d *fencedDetector) Buffer() string {
	return string(d.buf)
}

func (d *fencedDetector) Flush() string {
	s := string(d.buf)
	d.buf = d.buf[:0]
	return s
}

func (d *fencedDetector) Reset() {
	if !d.done {
		return
	}
	d.done = false
	d.inFence = false
	d.bodyLen = 0
	d.payload.Reset()
}

func (d *fencedDetector) Process() Result {
	if d.done {
		return Result{Complete: true}
	}
	if d.err != nil {
		return passthrough(&d.buf, d.err)
	}

	var delta strings.Builder
	var content string

	if !d.inFence {
		i, marker := indexMarker(d.buf, StartMarkers...)
		if i == -1 {
			safe := len(d.buf) - maxOverlap(d.buf, StartMarkers...)
			content = string(d.buf[:safe])
			d.buf = d.buf[safe:]
			return Result{
				Delta:           content,
				Content:         content,
				WaitingForStart: true,
			}
		}

		content = string(d.buf[:i])
		delta.WriteString(content)
		delta.WriteString(marker)
		d.payload.WriteString(marker)
		d.buf = d.buf[i+len(marker):]
		d.inFence = true
	}

	if j := bytes.Index(d.buf, []byte(EndMarker)); j != -1 {
		body := d.buf[:j]
		if d.exceeds(len(body)) {
			return d.fail(delta.String())
		}
		delta.Write(body)
		delta.WriteString(EndMarker)
		d.payload.Write(body)
		d.payload.WriteString(EndMarker)
		d.buf = d.buf[j+len(EndMarker):]
		d.done = true
		return Result{
			Delta:    delta.String(),
			Content:  content,
			Payload:  d.payload.String(),
			Complete: true,
		}
	}

	safe := len(d.buf) - overlap(d.buf, EndMarker)
	if d.exceeds(safe) {
		return d.fail(delta.String())
	}
	delta.Write(d.buf[:safe])
	d.payload.Write(d.buf[:safe])
	d.bodyLen += safe
	d.buf = d.buf[safe:]
	return Result{
		Delta:   delta.String(),
		Content: content,
	}
}

// exceeds meldet ob n weitere Body-Bytes das Fence-Limit ueberschreiten.
func (d *fencedDetector) exceeds(n int) bool {
	return d.opts.MaxFenceBytes > 0 && d.bodyLen+n > d.opts.MaxFenceBytes
}

// fail bricht die Erkennung ab; bereits klassifizierter Text aus diesem
// Aufruf wird zusammen mit dem Puffer als normaler Text freigegeben.
func (d *fencedDetector) fail(pending string) Result {
	d.err = ErrFenceTooLong
	d.inFence = false
	d.payload.Reset()
	r := passthrough(&d.buf, d.err)
	r.Delta = pending + r.Delta
	r.Content = r.Delta
	return r
}
