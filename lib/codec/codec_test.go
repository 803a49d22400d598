package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyplex/keyplex/lib/record"
)

func TestEncodeDecodeLineRoundTrip(t *testing.T) {
	rec := record.Record{
		LastName:  "Ivanov",
		FirstName: "Ivan",
		Birthday:  "1999",
		City:      "Moscow",
		Coins:     "21",
	}

	line := EncodeLine("foo0", rec)
	key, got, err := DecodeLine(line)

	require.NoError(t, err)
	assert.Equal(t, "foo0", key)
	assert.Equal(t, rec, got)
}

func TestDecodeRecordWildcard(t *testing.T) {
	rec, err := DecodeRecord(`"-" "-" - "-" -`)
	require.NoError(t, err)
	assert.Equal(t, record.Record{LastName: "-", FirstName: "-", Birthday: "-", City: "-", Coins: "-"}, rec)
}

func TestDecodeLineWrongFieldCount(t *testing.T) {
	_, _, err := DecodeLine(`foo0 "Ivanov" "Ivan" 1999`)
	assert.Error(t, err)
}

func TestDecodeLineUnterminatedQuote(t *testing.T) {
	_, _, err := DecodeLine(`foo0 "Ivanov" "Ivan" 1999 "Moscow 21`)
	assert.Error(t, err)
}

func TestDecoderStopsAtFirstBadLine(t *testing.T) {
	input := strings.Join([]string{
		`foo0 "A" "B" 1 "C" 2`,
		`foo1 "A" "B" 2 "C" 3`,
		`this line is garbage`,
		`foo2 "A" "B" 4 "C" 5`,
	}, "\n")

	dec := NewDecoder(strings.NewReader(input))

	count := 0
	for {
		_, _, ok, err := dec.Next()
		if err != nil {
			break
		}
		if !ok {
			break
		}
		count++
	}

	assert.Equal(t, 2, count)
}

func TestDecoderToleratesTrailingWhitespace(t *testing.T) {
	dec := NewDecoder(strings.NewReader(`foo0 "A" "B" 1 "C" 2   ` + "\r\n"))
	key, rec, ok, err := dec.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "foo0", key)
	assert.Equal(t, "A", rec.LastName)
}

func TestEncoderDecoderRoundTripMultipleRecords(t *testing.T) {
	var buf strings.Builder
	enc := NewEncoder(&buf)

	records := map[string]record.Record{
		"foo0": {LastName: "A0", FirstName: "B0", Birthday: "1", City: "C0", Coins: "10"},
		"foo1": {LastName: "A1", FirstName: "B1", Birthday: "2", City: "C1", Coins: "20"},
	}

	for _, k := range []string{"foo0", "foo1"} {
		require.NoError(t, enc.Encode(k, records[k]))
	}
	require.NoError(t, enc.Flush())

	dec := NewDecoder(strings.NewReader(buf.String()))
	got := make(map[string]record.Record)
	for {
		k, rec, ok, err := dec.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got[k] = rec
	}

	assert.Equal(t, records, got)
}
