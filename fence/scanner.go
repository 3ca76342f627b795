// scanner.go - JSON-Werte-Scanner (Klammer-, String- und Escape-Tracking)
//
// Enthaelt:
// - ScanState: SeekingStart, InValue, Completed, Failed
// - Step: Uebergangsfunktion (state, byte) -> (state, consumed)
//
// Der Scanner arbeitet auf Bytes. Alle Strukturzeichen sind ASCII und
// UTF-8-Folgebytes kollidieren nie mit ASCII, daher duerfen Chunks auch
// mitten in einem Multibyte-Zeichen getrennt sein.
package fence

import (
	"fmt"
	"unicode/utf8"
)

// ScanState ist der Zustand eines Scanners. Die Menge der Zustaende ist
// durch die Marker-Methode geschlossen.
type ScanState interface {
	isScanState()
}

// SeekingStart: noch kein '{' oder '[' gefunden.
type SeekingStart struct {
	// PrefixLen zaehlt die bisher gesehenen Praefix-Zeichen (nicht Bytes).
	PrefixLen int
}

// InValue verfolgt einen Kandidaten fuer ein JSON-Literal auf oberster Ebene.
type InValue struct {
	Root     byte
	Depth    int
	InString bool
	Escaped  bool
}

// Completed: das Literal ist geschlossen.
type Completed struct{}

// Failed: die Erkennung ist abgebrochen.
type Failed struct {
	Reason error
}

func (SeekingStart) isScanState() {}
func (InValue) isScanState()      {}
func (Completed) isScanState()    {}
func (Failed) isScanState()       {}

// terminal meldet ob s ein Endzustand ist.
func terminal(s ScanState) bool {
	switch s.(type) {
	case Completed, Failed:
		return true
	}
	return false
}

// Step verarbeitet ein Byte. Der zweite Rueckgabewert ist false, wenn c
// nicht konsumiert wurde; das passiert nur in Endzustaenden.
// maxPrefix < 0 schaltet das Praefix-Limit ab.
func Step(state ScanState, c byte, maxPrefix int) (ScanState, bool) {
	switch s := state.(type) {
	case SeekingStart:
		if c == '{' || c == '[' {
			return InValue{Root: c, Depth: 1}, true
		}
		if utf8.RuneStart(c) {
			s.PrefixLen++
		}
		if maxPrefix >= 0 && s.PrefixLen > maxPrefix {
			return Failed{Reason: ErrPrefixTooLong}, true
		}
		return s, true
	case InValue:
		return stepValue(s, c), true
	case Completed, Failed:
		return state, false
	default:
		panic(fmt.Sprintf("fence: unexpected scan state %T", state))
	}
}

func stepValue(s InValue, c byte) ScanState {
	if s.InString {
		switch {
		case s.Escaped:
			s.Escaped = false
		case c == '\\':
			s.Escaped = true
		case c == '"':
			s.InString = false
		}
		return s
	}

	switch c {
	case '"':
		s.InString = true
	case '{', '[':
		s.Depth++
	case '}', ']':
		s.Depth--
		if s.Depth == 0 {
			if family(c) != family(s.Root) {
				return Failed{Reason: ErrRootMismatch}
			}
			return Completed{}
		}
	}
	return s
}

// family bildet schliessende auf oeffnende Klammern ab.
func family(c byte) byte {
	switch c {
	case '{', '}':
		return '{'
	case '[', ']':
		return '['
	}
	return 0
}
