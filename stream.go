package dsv

import (
	"fmt"
	"iter"

	"github.com/splurge/dsv/errs"
)

// ChunkSource is a lazy sequence of line chunks, as produced by
// textio.Reader.ReadStream. Each step yields either a chunk of raw lines or
// an error; after an error the source is exhausted.
type ChunkSource = iter.Seq2[[]string, error]

// detectionState tracks one streaming call's column detection: the tokenized
// chunks buffered so far (never more than the configured detection window),
// and the resolved column count once a non-blank row has been seen.
//
// A detectionState is created per ParseStream call and discarded when the
// returned sequence stops; it is never shared.
type detectionState struct {
	buffered [][][]string
	resolved bool
	width    int
}

// observe tokenized rows from the next chunk: buffer them and, while
// unresolved, try to detect the column count. Detection resolves at most
// once.
func (d *detectionState) observe(rows [][]string) {
	d.buffered = append(d.buffered, rows)
	if !d.resolved {
		if width, ok := detectColumns(rows); ok {
			d.resolved = true
			d.width = width
		}
	}
}

// ParseStream parses a chunked stream of raw lines, yielding chunks of
// tokenized (and, when a width is known, normalized) rows.
//
// The call runs as a pull-driven state machine. With a fixed target column
// count, or with detection disabled, every chunk is tokenized, normalized and
// yielded immediately with no buffering. With column detection enabled, the
// engine buffers up to MaxDetectChunks leading chunks while scanning for the
// first non-blank row, then replays the buffered chunks in original order
// exactly once before passing the remainder of the stream through. If no
// non-blank row appears within the window, the whole stream is yielded
// unnormalized; detection is never re-attempted later in the same call.
//
// Concatenating all yielded chunks reproduces the source's rows in order,
// with no loss or duplication, regardless of how chunk boundaries fell during
// detection. Any tokenization error, strict-width mismatch, or source error
// ends the sequence with that error wrapped under errs.ErrStreaming; chunks
// already yielded stand.
//
// The caller may stop consuming at any point; the only resource held is the
// detection buffer, which is released when the sequence stops.
func (p *Parser) ParseStream(src ChunkSource) iter.Seq2[[][]string, error] {
	cfg := p.config

	return func(yield func([][]string, error) bool) {
		p.publish(TopicStreamBegin, map[string]any{"chunk_size": cfg.chunkSize})

		next, stop := iter.Pull2(src)
		defer stop()

		policy := widthPolicy{
			target:         cfg.targetColumns,
			raiseOnMissing: cfg.raiseOnMissingColumns,
			raiseOnExtra:   cfg.raiseOnExtraColumns,
		}

		fail := func(err error) {
			err = fmt.Errorf("%w: %w", errs.ErrStreaming, err)
			p.publishError(TopicStreamError, err)
			yield(nil, err)
		}

		if policy.target == 0 && cfg.detectColumns {
			// Detecting: pull and buffer chunks until the column count
			// resolves or the lookahead window is full.
			det := &detectionState{}
			for !det.resolved && len(det.buffered) < cfg.maxDetectChunks {
				lines, err, ok := next()
				if !ok {
					break
				}
				if err != nil {
					fail(err)
					return
				}
				rows, err := p.tokenizeAll(lines)
				if err != nil {
					fail(err)
					return
				}
				det.observe(rows)
			}

			if det.resolved {
				policy.target = det.width
				policy.detected = true
			}

			// Replaying: the buffered prefix goes out first, in original
			// order, now that the width (if any) is known.
			for _, rows := range det.buffered {
				normalized, err := policy.normalizeAll(rows)
				if err != nil {
					fail(err)
					return
				}
				p.publish(TopicStreamChunk, map[string]any{"rows": len(normalized)})
				if !yield(normalized, nil) {
					return
				}
			}
			det.buffered = nil
		}

		// Passthrough: every remaining chunk is tokenized, normalized and
		// yielded immediately.
		for {
			lines, err, ok := next()
			if !ok {
				break
			}
			if err != nil {
				fail(err)
				return
			}
			rows, err := p.tokenizeAll(lines)
			if err != nil {
				fail(err)
				return
			}
			rows, err = policy.normalizeAll(rows)
			if err != nil {
				fail(err)
				return
			}
			p.publish(TopicStreamChunk, map[string]any{"rows": len(rows)})
			if !yield(rows, nil) {
				return
			}
		}

		p.publish(TopicStreamEnd, nil)
	}
}
