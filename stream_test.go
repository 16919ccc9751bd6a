package dsv

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/splurge/dsv/errs"
	"github.com/splurge/dsv/events"
)

// chunkSourceOf yields the given chunks in order, then stops.
func chunkSourceOf(chunks ...[]string) ChunkSource {
	return func(yield func([]string, error) bool) {
		for _, chunk := range chunks {
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// collect drains a parse stream, returning all yielded chunks and the
// terminal error, if any.
func collect(t *testing.T, seq func(func([][]string, error) bool)) ([][][]string, error) {
	t.Helper()
	var chunks [][][]string
	for chunk, err := range seq {
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func flatten(chunks [][][]string) [][]string {
	var rows [][]string
	for _, chunk := range chunks {
		rows = append(rows, chunk...)
	}
	return rows
}

func TestParseStream_FixedTargetPassthrough(t *testing.T) {
	p := NewParser(mustConfig(t, WithDelimiter(","), WithTargetColumns(2)))

	chunks, err := collect(t, p.ParseStream(chunkSourceOf(
		[]string{"a,b,c", "d", ""},
		[]string{"e,f"},
	)))
	require.NoError(t, err)
	require.Equal(t, [][][]string{
		{{"a", "b"}, {"d", ""}, {"", ""}},
		{{"e", "f"}},
	}, chunks)
}

func TestParseStream_NoWidthHandling(t *testing.T) {
	p := NewParser(mustConfig(t, WithDelimiter(",")))

	chunks, err := collect(t, p.ParseStream(chunkSourceOf([]string{"a,b", "c"})))
	require.NoError(t, err)
	require.Equal(t, [][][]string{{{"a", "b"}, {"c"}}}, chunks)
}

func TestParseStream_DetectThenReplay(t *testing.T) {
	// Matches the chunked detection walkthrough: chunk size 2, window 2,
	// rows ["", "", "x,y", "p,q", "r,s"]. The first two chunks form the
	// detection buffer (width resolves to 2 at the third row), are replayed
	// in order, and the final chunk streams straight through.
	p := NewParser(mustConfig(t,
		WithDelimiter(","),
		WithColumnDetection(true),
		WithMaxDetectChunks(2),
	))

	chunks, err := collect(t, p.ParseStream(chunkSourceOf(
		[]string{"", ""},
		[]string{"x,y", "p,q"},
		[]string{"r,s"},
	)))
	require.NoError(t, err)
	require.Equal(t, [][][]string{
		{{""}, {""}},
		{{"x", "y"}, {"p", "q"}},
		{{"r", "s"}},
	}, chunks)
}

func TestParseStream_DetectionNormalizesReplayAndRemainder(t *testing.T) {
	p := NewParser(mustConfig(t, WithDelimiter(","), WithColumnDetection(true)))

	chunks, err := collect(t, p.ParseStream(chunkSourceOf(
		[]string{"a,b,c", "d,e"},
		[]string{"f,g,h,i"},
	)))
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"a", "b", "c"},
		{"d", "e", ""},    // padded during replay
		{"f", "g", "h"},   // truncated during passthrough
	}, flatten(chunks))
}

func TestParseStream_BoundedLookahead(t *testing.T) {
	// The engine must never pull more than MaxDetectChunks chunks before it
	// starts yielding, no matter how many leading blank rows there are.
	var pulled int
	src := func(yield func([]string, error) bool) {
		for i := 0; i < 50; i++ {
			pulled++
			if !yield([]string{"", ""}, nil) {
				return
			}
		}
	}

	p := NewParser(mustConfig(t,
		WithDelimiter(","),
		WithColumnDetection(true),
		WithMaxDetectChunks(3),
	))

	first := true
	for _, err := range p.ParseStream(src) {
		require.NoError(t, err)
		if first {
			require.LessOrEqual(t, pulled, 3,
				"detection buffered more chunks than the window allows")
			first = false
		}
	}
	require.False(t, first, "stream yielded nothing")
}

func TestParseStream_UndeterminedDetectionStaysUnnormalized(t *testing.T) {
	// No non-blank row inside the window: the whole stream passes through
	// unnormalized, even when real data shows up later. Detection is not
	// re-attempted within the same call.
	p := NewParser(mustConfig(t,
		WithDelimiter(","),
		WithColumnDetection(true),
		WithMaxDetectChunks(2),
	))

	chunks, err := collect(t, p.ParseStream(chunkSourceOf(
		[]string{"", ""},
		[]string{"", ""},
		[]string{"a,b,c"},
		[]string{"d,e"},
	)))
	require.NoError(t, err)

	rows := flatten(chunks)
	require.Contains(t, rows, []string{"a", "b", "c"})
	require.Contains(t, rows, []string{"d", "e"}, "late rows must not be normalized")
	for _, row := range rows {
		require.NotEqual(t, []string{"", "", ""}, row,
			"blank rows must not be padded to the late width")
	}
}

func TestParseStream_OrderMatchesParseMany(t *testing.T) {
	lines := []string{
		"", "h1,h2,h3", "a,b", "c,d,e,f", "", "g", "h,i,j",
	}

	cfg := mustConfig(t, WithDelimiter(","), WithColumnDetection(true))
	p := NewParser(cfg)

	batched, err := p.ParseMany(lines)
	require.NoError(t, err)

	// Several chunkings of the same lines must all reproduce the batch
	// result exactly.
	for _, size := range []int{1, 2, 3, len(lines)} {
		t.Run(fmt.Sprintf("chunk_size_%d", size), func(t *testing.T) {
			var chunks [][]string
			for start := 0; start < len(lines); start += size {
				end := min(start+size, len(lines))
				chunks = append(chunks, lines[start:end])
			}

			streamed, err := collect(t, p.ParseStream(chunkSourceOf(chunks...)))
			require.NoError(t, err)
			require.Equal(t, batched, flatten(streamed))
		})
	}
}

func TestParseStream_SourceErrorPropagates(t *testing.T) {
	sourceErr := fmt.Errorf("%w: mid-stream failure", errs.ErrFileDecoding)
	src := func(yield func([]string, error) bool) {
		if !yield([]string{"a,b"}, nil) {
			return
		}
		yield(nil, sourceErr)
	}

	p := NewParser(mustConfig(t, WithDelimiter(",")))
	chunks, err := collect(t, p.ParseStream(src))

	// The chunk delivered before the failure stands, and the error carries
	// both the streaming category and the underlying cause.
	require.Equal(t, [][][]string{{{"a", "b"}}}, chunks)
	require.ErrorIs(t, err, errs.ErrStreaming)
	require.ErrorIs(t, err, errs.ErrFileDecoding)
}

func TestParseStream_SourceErrorDuringDetection(t *testing.T) {
	sourceErr := fmt.Errorf("%w: boom", errs.ErrFilePermission)
	src := func(yield func([]string, error) bool) {
		if !yield([]string{"", ""}, nil) {
			return
		}
		yield(nil, sourceErr)
	}

	p := NewParser(mustConfig(t, WithDelimiter(","), WithColumnDetection(true)))
	chunks, err := collect(t, p.ParseStream(src))
	require.Empty(t, chunks, "no chunk may be yielded when detection fails")
	require.ErrorIs(t, err, errs.ErrFilePermission)
}

func TestParseStream_StrictMismatchDuringPassthrough(t *testing.T) {
	p := NewParser(mustConfig(t,
		WithDelimiter(","), WithTargetColumns(2), WithRaiseOnMissingColumns(true)))

	chunks, err := collect(t, p.ParseStream(chunkSourceOf(
		[]string{"a,b"},
		[]string{"c"},
	)))
	require.Equal(t, [][][]string{{{"a", "b"}}}, chunks)
	require.ErrorIs(t, err, errs.ErrColumnMismatch)
}

func TestParseStream_StrictMismatchDuringReplay(t *testing.T) {
	// The short row sits in the same chunk that resolves detection, so the
	// failure surfaces while replaying the buffered prefix.
	p := NewParser(mustConfig(t,
		WithDelimiter(","), WithColumnDetection(true), WithRaiseOnMissingColumns(true)))

	chunks, err := collect(t, p.ParseStream(chunkSourceOf(
		[]string{"x,y,z", "p,q"},
	)))
	require.Empty(t, chunks)
	require.ErrorIs(t, err, errs.ErrColumnMismatch)
}

func TestParseStream_EarlyTermination(t *testing.T) {
	var pulled int
	src := func(yield func([]string, error) bool) {
		for i := 0; i < 100; i++ {
			pulled++
			if !yield([]string{"a,b"}, nil) {
				return
			}
		}
	}

	p := NewParser(mustConfig(t, WithDelimiter(",")))
	for chunk, err := range p.ParseStream(src) {
		require.NoError(t, err)
		require.NotEmpty(t, chunk)
		break
	}
	require.LessOrEqual(t, pulled, 2, "engine must not read ahead after the caller stops")
}

func TestParseStream_EmptySource(t *testing.T) {
	p := NewParser(mustConfig(t, WithDelimiter(","), WithColumnDetection(true)))
	chunks, err := collect(t, p.ParseStream(chunkSourceOf()))
	require.NoError(t, err)
	require.Empty(t, chunks)
}

func TestParseStream_Events(t *testing.T) {
	bus := events.NewBus()
	var topics []string
	bus.Subscribe(events.Wildcard, "", func(msg events.Message) {
		topics = append(topics, msg.Topic)
	})

	p := NewParser(mustConfig(t, WithDelimiter(",")), WithEventBus(bus))
	_, err := collect(t, p.ParseStream(chunkSourceOf([]string{"a,b"}, []string{"c,d"})))
	require.NoError(t, err)
	require.Equal(t, []string{
		TopicStreamBegin, TopicStreamChunk, TopicStreamChunk, TopicStreamEnd,
	}, topics)
}
