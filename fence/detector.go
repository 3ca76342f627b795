// Package fence erkennt JSON-Tool-Call-Payloads im Token-Stream eines
// Completion-Modells.
//
// Modul: detector.go - Detector-Interface und Result
// Enthaelt: Detector, Result, New
//
// Ein Detector ist zweiphasig: AddChunk haengt nur an, Process klassifiziert
// so viel vom Puffer wie eindeutig moeglich. Mehrdeutige Reste (ein halber
// Marker am Pufferende) bleiben im Puffer, bis weitere Chunks kommen.
//
// Fuer jede Instanz gilt: die Konkatenation aller Deltas plus der aktuelle
// Puffer ist exakt die Konkatenation aller Chunks.
package fence

// Result ist das Ergebnis eines Process-Aufrufs.
type Result struct {
	// Delta enthaelt alle Bytes, die dieser Aufruf freigegeben hat.
	Delta string

	// Content ist der fuehrende Teil von Delta, der normaler Text ist
	// (also nicht zu einem Payload gehoert).
	Content string

	// Payload ist nur in dem Aufruf gesetzt, der Complete erreicht.
	Payload string

	Complete        bool
	WaitingForStart bool
	Failed          bool
	Err             error
}

// Detector ist ein Streaming-Erkenner fuer genau eine Generierung.
// Instanzen sind nicht fuer parallele Nutzung gedacht.
type Detector interface {
	// AddChunk haengt Text an den Puffer an, ohne ihn zu verarbeiten.
	AddChunk(s string)

	// Process klassifiziert den eindeutigen Teil des Puffers.
	Process() Result

	// Buffer gibt den noch nicht klassifizierten Rest zurueck.
	Buffer() string

	// Reset startet nach Complete einen neuen Erkennungszyklus. Der Puffer
	// (Text nach dem Payload) bleibt erhalten. Nach Failed ist Reset wirkungslos.
	Reset()

	// Flush gibt am Stream-Ende den zurueckgehaltenen Puffer als Text zurueck.
	Flush() string
}

// New erzeugt einen Detector fuer den gewuenschten Modus.
func New(mode Mode, opts Options) Detector {
	opts = opts.normalize()
	if mode == ModeBare {
		return newBareDetector(opts)
	}
	return newFencedDetector(opts)
}

// passthrough gibt nach einem Fehler den gesamten Puffer als Text frei.
func passthrough(buf *[]byte, err error) Result {
	delta := string(*buf)
	*buf = (*buf)[:0]
	return Result{
		Delta:   delta,
		Content: delta,
		Failed:  true,
		Err:     err,
	}
}
