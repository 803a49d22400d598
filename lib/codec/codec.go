package codec

import (
	"bufio"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/keyplex/keyplex/lib/record"
)

// ErrMalformedLine is wrapped into the error returned by DecodeLine
// and DecodeRecord when a line does not tokenize into the expected
// shape (wrong token count, or an unterminated quote).
var ErrMalformedLine = errors.New("codec: malformed record line")

// tokenize splits line on whitespace, except that a double-quote
// starts a token that runs to the next double quote (the quotes
// themselves are stripped). This mirrors the behavior of C++'s
// std::quoted combined with stream whitespace skipping. Embedded
// quotes inside a quoted field are not supported.
func tokenize(line string) ([]string, error) {
	var tokens []string
	i, n := 0, len(line)

	isSpace := func(b byte) bool { return b == ' ' || b == '\t' || b == '\r' || b == '\n' }

	for i < n {
		for i < n && isSpace(line[i]) {
			i++
		}
		if i >= n {
			break
		}

		if line[i] == '"' {
			j := i + 1
			for j < n && line[j] != '"' {
				j++
			}
			if j >= n {
				return nil, errors.Wrapf(ErrMalformedLine, "unterminated quote at byte %d", i)
			}
			tokens = append(tokens, line[i+1:j])
			i = j + 1
		} else {
			j := i
			for j < n && !isSpace(line[j]) {
				j++
			}
			tokens = append(tokens, line[i:j])
			i = j
		}
	}

	return tokens, nil
}

func quote(s string) string {
	return `"` + s + `"`
}

// DecodeRecord parses the five-field record body (no leading key
// token): "<last_name>" "<first_name>" <birthday> "<city>" <coins>.
func DecodeRecord(line string) (record.Record, error) {
	tokens, err := tokenize(line)
	if err != nil {
		return record.Record{}, err
	}
	if len(tokens) != 5 {
		return record.Record{}, errors.Wrapf(ErrMalformedLine, "expected 5 fields, got %d", len(tokens))
	}
	return record.Record{
		LastName:  tokens[0],
		FirstName: tokens[1],
		Birthday:  tokens[2],
		City:      tokens[3],
		Coins:     tokens[4],
	}, nil
}

// EncodeRecord formats a Record's five fields on one line, inverse of
// DecodeRecord.
func EncodeRecord(rec record.Record) string {
	return strings.Join([]string{
		quote(rec.LastName),
		quote(rec.FirstName),
		rec.Birthday,
		quote(rec.City),
		rec.Coins,
	}, " ")
}

// DecodeLine parses one store-level export line: the key token
// followed by the five-field record body.
func DecodeLine(line string) (key string, rec record.Record, err error) {
	tokens, err := tokenize(line)
	if err != nil {
		return "", record.Record{}, err
	}
	if len(tokens) != 6 {
		return "", record.Record{}, errors.Wrapf(ErrMalformedLine, "expected 6 fields, got %d", len(tokens))
	}
	return tokens[0], record.Record{
		LastName:  tokens[1],
		FirstName: tokens[2],
		Birthday:  tokens[3],
		City:      tokens[4],
		Coins:     tokens[5],
	}, nil
}

// EncodeLine formats one store-level export line, inverse of
// DecodeLine.
func EncodeLine(key string, rec record.Record) string {
	return key + " " + EncodeRecord(rec)
}

// Decoder reads key/Record pairs line by line from an io.Reader,
// stopping at the first malformed line (Upload's contract: parse
// failure terminates the load).
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder wraps r for line-oriented decoding.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{scanner: bufio.NewScanner(r)}
}

// Next returns the next successfully parsed key/Record pair. ok is
// false at end of input; err is non-nil only on a parse failure (as
// opposed to plain end of file) or an underlying read error.
func (d *Decoder) Next() (key string, rec record.Record, ok bool, err error) {
	for d.scanner.Scan() {
		line := strings.TrimRight(d.scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, rec, err = DecodeLine(line)
		if err != nil {
			return "", record.Record{}, false, err
		}
		return key, rec, true, nil
	}
	return "", record.Record{}, false, d.scanner.Err()
}

// Encoder writes key/Record pairs as lines to an io.Writer.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder wraps w for line-oriented encoding.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode writes one line for key/rec.
func (e *Encoder) Encode(key string, rec record.Record) error {
	if _, err := e.w.WriteString(EncodeLine(key, rec)); err != nil {
		return errors.Wrap(err, "codec: write line")
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "codec: write newline")
	}
	return nil
}

// Flush flushes any buffered output to the underlying writer.
func (e *Encoder) Flush() error {
	return errors.Wrap(e.w.Flush(), "codec: flush")
}
