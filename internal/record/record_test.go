package record

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ember/pkg/errors"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		rec  Record
	}{
		{name: "plain value", rec: New("k1", "v1")},
		{name: "empty value is not a tombstone", rec: New("k1", "")},
		{name: "tombstone", rec: NewTombstone("k1")},
		{name: "embedded quotes", rec: New("quo\"te", `a "quoted" value`)},
		{name: "embedded newline", rec: New("k1", "line1\nline2")},
		{name: "unicode", rec: New("ключ", "wert ❤")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line, err := tc.rec.Encode()
			require.NoError(t, err)
			require.Equal(t, byte('\n'), line[len(line)-1], "encoded record must end in newline")
			require.Equal(t, 1, countNewlines(line), "encoded record must be a single line")

			decoded, err := Decode(line)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.rec, decoded); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func countNewlines(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}

func TestEncodeWireFormat(t *testing.T) {
	t.Parallel()

	line, err := New("k", "v").Encode()
	require.NoError(t, err)
	require.Equal(t, `{"key":"k","value":"v"}`+"\n", string(line))

	line, err = NewTombstone("k").Encode()
	require.NoError(t, err)
	require.Equal(t, `{"key":"k","value":null}`+"\n", string(line))
}

func TestEncodeEmptyKey(t *testing.T) {
	t.Parallel()

	_, err := Record{}.Encode()
	require.True(t, errors.IsCodecError(err))
	require.Equal(t, errors.ErrorCodeEmptyKey, errors.GetErrorCode(err))
}

func TestDecodeTolerantOfTrailingNewline(t *testing.T) {
	t.Parallel()

	withNewline, err := Decode([]byte(`{"key":"k","value":"v"}` + "\n"))
	require.NoError(t, err)
	withoutNewline, err := Decode([]byte(`{"key":"k","value":"v"}`))
	require.NoError(t, err)
	require.Equal(t, withNewline, withoutNewline)
}

func TestDecodeFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		line string
		code errors.ErrorCode
	}{
		{name: "not json", line: `not json at all`, code: errors.ErrorCodeMalformedRecord},
		{name: "truncated object", line: `{"key":"k","val`, code: errors.ErrorCodeMalformedRecord},
		{name: "missing value field", line: `{"key":"k"}`, code: errors.ErrorCodeMalformedRecord},
		{name: "missing key field", line: `{"value":"v"}`, code: errors.ErrorCodeMalformedRecord},
		{name: "empty key", line: `{"key":"","value":"v"}`, code: errors.ErrorCodeEmptyKey},
		{name: "numeric key", line: `{"key":7,"value":"v"}`, code: errors.ErrorCodeMalformedRecord},
		{name: "numeric value", line: `{"key":"k","value":7}`, code: errors.ErrorCodeMalformedRecord},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.line))
			require.Error(t, err)
			require.True(t, errors.IsCodecError(err), "want CodecError, got %v", err)
			require.Equal(t, tc.code, errors.GetErrorCode(err))
		})
	}
}

func TestTombstone(t *testing.T) {
	t.Parallel()

	require.True(t, NewTombstone("k").IsTombstone())
	require.False(t, New("k", "").IsTombstone())
}
