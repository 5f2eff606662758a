// Package progress extracts frame progress from the frame server's
// diagnostic stream.
//
// The frame server rewrites a single status line using carriage returns, so
// records are split on '\r' rather than on newlines:
//
//	Frame: 1/1440\rFrame: 2/1440\r...
package progress

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strconv"
)

// maxRecordSize caps how much of an undelimited record is buffered. A longer
// record is handed on in whole lines; a single line longer than this is
// dropped up to the next '\r'.
const maxRecordSize = 4096

var frameMarker = regexp.MustCompile(`Frame: (\d+)/(\d+)`)

// Sink receives progress updates.
type Sink interface {
	SetTotal(total uint64)
	SetPosition(position uint64)
}

// Scan reads r until EOF, reporting every progress marker to sink. The total
// is reported once, from the first marker; the position is reported for
// every marker, whether or not it moved forward. Records without a marker
// are skipped. Read errors other than EOF are returned.
func Scan(r io.Reader, sink Sink) error {
	return ScanWith(r, sink, nil)
}

// ScanWith is Scan with a callback for diagnostic text. It receives records
// without a marker and the text around a marker, when not blank. The slice
// is only valid during the call.
func ScanWith(r io.Reader, sink Sink, other func(record []byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, maxRecordSize), 2*maxRecordSize)
	scanner.Split(SplitRecords())

	report := func(text []byte) {
		if other != nil && len(bytes.TrimSpace(text)) > 0 {
			other(text)
		}
	}

	haveTotal := false
	for scanner.Scan() {
		record := scanner.Bytes()
		current, total, loc, ok := findMarker(record)
		if !ok {
			if other != nil {
				other(record)
			}
			continue
		}
		report(record[:loc[0]])
		if !haveTotal {
			sink.SetTotal(total)
			haveTotal = true
		}
		sink.SetPosition(current)
		report(record[loc[1]:])
	}
	return scanner.Err()
}

// SplitRecords returns a bufio.SplitFunc that splits on a single '\r' byte.
// Consecutive separators yield empty records. A record that outgrows
// maxRecordSize is emitted up to its last newline, so a marker is never cut
// in two; without a newline the record is discarded through the next '\r'.
func SplitRecords() bufio.SplitFunc {
	skipping := false
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.IndexByte(data, '\r'); i >= 0 {
			if skipping {
				skipping = false
				return i + 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
		if skipping {
			return len(data), nil, nil
		}
		if atEOF {
			return len(data), data, nil
		}
		if len(data) >= maxRecordSize {
			if i := bytes.LastIndexByte(data, '\n'); i >= 0 {
				return i + 1, data[:i+1], nil
			}
			skipping = true
			return len(data), nil, nil
		}
		return 0, nil, nil
	}
}

// ParseMarker extracts current and total from a "Frame: current/total"
// record. Values that overflow uint64 are rejected.
func ParseMarker(record []byte) (current, total uint64, ok bool) {
	current, total, _, ok = findMarker(record)
	return current, total, ok
}

// findMarker is ParseMarker that also returns the marker's byte range.
func findMarker(record []byte) (current, total uint64, loc []int, ok bool) {
	m := frameMarker.FindSubmatchIndex(record)
	if m == nil {
		return 0, 0, nil, false
	}
	current, err := strconv.ParseUint(string(record[m[2]:m[3]]), 10, 64)
	if err != nil {
		return 0, 0, nil, false
	}
	total, err = strconv.ParseUint(string(record[m[4]:m[5]]), 10, 64)
	if err != nil {
		return 0, 0, nil, false
	}
	return current, total, m[:2], true
}
