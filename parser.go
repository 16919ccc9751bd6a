package dsv

import (
	"github.com/splurge/dsv/events"
	"github.com/splurge/dsv/tokenizer"
)

// Event topics published by Parser instances.
const (
	TopicParseBegin  = "dsv.parse.begin"
	TopicParseEnd    = "dsv.parse.end"
	TopicParseError  = "dsv.parse.error"
	TopicStreamBegin = "dsv.stream.begin"
	TopicStreamChunk = "dsv.stream.chunk"
	TopicStreamEnd   = "dsv.stream.end"
	TopicStreamError = "dsv.stream.error"
)

// Parser parses delimited text using a bound Config.
//
// A Parser holds no mutable parsing state of its own: every call is
// independent, and streaming calls each own a private detection state, so a
// single Parser is safe to reuse across many inputs.
type Parser struct {
	config        *Config
	correlationID string
	bus           *events.Bus
}

// ParserOption configures a Parser at construction time.
type ParserOption func(*Parser)

// WithEventBus attaches an event bus. The parser publishes begin/end/error
// notifications for parse and stream operations; delivery is fire-and-forget.
func WithEventBus(bus *events.Bus) ParserOption {
	return func(p *Parser) { p.bus = bus }
}

// WithCorrelationID overrides the generated correlation ID carried on every
// event the parser publishes.
func WithCorrelationID(id string) ParserOption {
	return func(p *Parser) { p.correlationID = id }
}

// NewParser creates a Parser bound to config.
func NewParser(config *Config, opts ...ParserOption) *Parser {
	p := &Parser{
		config:        config,
		correlationID: events.NewCorrelationID(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Config returns the bound configuration.
func (p *Parser) Config() *Config { return p.config }

// CorrelationID returns the ID carried on every event this parser publishes.
func (p *Parser) CorrelationID() string { return p.correlationID }

// Parse tokenizes a single row into fields: the row is split on every
// literal occurrence of the delimiter, each field is optionally
// whitespace-stripped, and the configured bookend is removed from field ends.
//
// Parse never normalizes the field count; width handling belongs to
// ParseMany and the streaming calls.
func (p *Parser) Parse(line string) ([]string, error) {
	cfg := p.config

	tokens, err := tokenizer.Tokenize(line, cfg.delimiter, cfg.strip)
	if err != nil {
		return nil, err
	}

	if cfg.bookend != "" {
		for i, token := range tokens {
			tokens[i] = tokenizer.RemoveBookends(token, cfg.bookend, cfg.bookendStrip)
		}
	}

	return tokens, nil
}

// ParseMany tokenizes every line independently, preserving order, then
// applies width handling: an explicit target column count normalizes every
// row to it; otherwise, when column detection is enabled, the count is
// inferred from the first non-blank tokenized row and applied to all rows.
// Undetermined detection (all rows blank) leaves rows unnormalized.
//
// With a strict flag set, the first mismatching row aborts the call with a
// ColumnMismatch error naming the row's index within lines.
func (p *Parser) ParseMany(lines []string) ([][]string, error) {
	p.publish(TopicParseBegin, map[string]any{"rows": len(lines)})

	rows, err := p.tokenizeAll(lines)
	if err != nil {
		p.publishError(TopicParseError, err)
		return nil, err
	}

	rows, err = p.widthPolicyFor(rows).normalizeAll(rows)
	if err != nil {
		p.publishError(TopicParseError, err)
		return nil, err
	}

	p.publish(TopicParseEnd, map[string]any{"rows": len(rows)})

	return rows, nil
}

// tokenizeAll parses each line into a row of fields, order preserved.
func (p *Parser) tokenizeAll(lines []string) ([][]string, error) {
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		row, err := p.Parse(line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// widthPolicyFor resolves the width policy for a batch of tokenized rows.
// An explicit target wins over detection; detection runs at most once.
func (p *Parser) widthPolicyFor(rows [][]string) widthPolicy {
	cfg := p.config
	policy := widthPolicy{
		target:         cfg.targetColumns,
		raiseOnMissing: cfg.raiseOnMissingColumns,
		raiseOnExtra:   cfg.raiseOnExtraColumns,
	}

	if policy.target == 0 && cfg.detectColumns {
		if width, ok := detectColumns(rows); ok {
			policy.target = width
			policy.detected = true
		}
	}

	return policy
}

func (p *Parser) publish(topic string, data map[string]any) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(events.Message{
		Topic:         topic,
		CorrelationID: p.correlationID,
		Data:          data,
	})
}

func (p *Parser) publishError(topic string, err error) {
	p.publish(topic, map[string]any{"error": err.Error()})
}
