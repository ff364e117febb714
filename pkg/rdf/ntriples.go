package rdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrSyntax is returned when an N-Triples line cannot be parsed.
var ErrSyntax = errors.New("n-triples syntax error")

// maxLineBytes bounds a single N-Triples line.
const maxLineBytes = 1 << 20

// ReadNTriples decodes every statement from r, preserving input order.
// Blank nodes are kept as resources with their "_:" label as URI. Language
// tags and datatypes on literals are discarded.
func ReadNTriples(r io.Reader) ([]Statement, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var statements []Statement
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		statement, err := parseNTriplesLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		statements = append(statements, statement)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read n-triples: %w", err)
	}

	return statements, nil
}

// WriteNTriples encodes statements one per line.
func WriteNTriples(w io.Writer, statements []Statement) error {
	for _, statement := range statements {
		if _, err := io.WriteString(w, statement.String()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

type lineCursor struct {
	line string
	pos  int
}

func parseNTriplesLine(line string) (Statement, error) {
	cursor := &lineCursor{line: line}

	subject, err := cursor.readNode()
	if err != nil {
		return Statement{}, err
	}
	predicate, err := cursor.readNode()
	if err != nil {
		return Statement{}, err
	}
	if predicate.Kind != KindResource || strings.HasPrefix(predicate.Value, "_:") {
		return Statement{}, fmt.Errorf("%w: predicate must be an IRI", ErrSyntax)
	}
	object, err := cursor.readObject()
	if err != nil {
		return Statement{}, err
	}

	cursor.skipSpace()
	if cursor.pos >= len(line) || line[cursor.pos] != '.' {
		return Statement{}, fmt.Errorf("%w: missing terminating '.'", ErrSyntax)
	}
	cursor.pos++
	cursor.skipSpace()
	if cursor.pos < len(line) && line[cursor.pos] != '#' {
		return Statement{}, fmt.Errorf("%w: unexpected trailing content %q", ErrSyntax, line[cursor.pos:])
	}

	return Statement{
		Subject:   Resource{URI: subject.Value},
		Predicate: Resource{URI: predicate.Value},
		Object:    object,
	}, nil
}

func (c *lineCursor) skipSpace() {
	for c.pos < len(c.line) && (c.line[c.pos] == ' ' || c.line[c.pos] == '\t') {
		c.pos++
	}
}

// readNode reads an IRI or blank node.
func (c *lineCursor) readNode() (Term, error) {
	c.skipSpace()
	if c.pos >= len(c.line) {
		return Term{}, fmt.Errorf("%w: unexpected end of line", ErrSyntax)
	}

	switch {
	case c.line[c.pos] == '<':
		end := strings.IndexByte(c.line[c.pos+1:], '>')
		if end < 0 {
			return Term{}, fmt.Errorf("%w: unterminated IRI", ErrSyntax)
		}
		raw := c.line[c.pos+1 : c.pos+1+end]
		c.pos += end + 2
		iri, err := unescape(raw)
		if err != nil {
			return Term{}, err
		}
		if iri == "" {
			return Term{}, fmt.Errorf("%w: empty IRI", ErrSyntax)
		}
		return ResourceTerm(iri), nil

	case strings.HasPrefix(c.line[c.pos:], "_:"):
		start := c.pos
		for c.pos < len(c.line) && c.line[c.pos] != ' ' && c.line[c.pos] != '\t' {
			c.pos++
		}
		return ResourceTerm(c.line[start:c.pos]), nil

	default:
		return Term{}, fmt.Errorf("%w: expected IRI or blank node at column %d", ErrSyntax, c.pos+1)
	}
}

// readObject reads an IRI, blank node or literal.
func (c *lineCursor) readObject() (Term, error) {
	c.skipSpace()
	if c.pos >= len(c.line) {
		return Term{}, fmt.Errorf("%w: missing object", ErrSyntax)
	}
	if c.line[c.pos] != '"' {
		return c.readNode()
	}

	c.pos++
	start := c.pos
	for {
		if c.pos >= len(c.line) {
			return Term{}, fmt.Errorf("%w: unterminated literal", ErrSyntax)
		}
		if c.line[c.pos] == '\\' {
			c.pos += 2
			continue
		}
		if c.line[c.pos] == '"' {
			break
		}
		c.pos++
	}
	value, err := unescape(c.line[start:c.pos])
	if err != nil {
		return Term{}, err
	}
	c.pos++

	// Language tag or datatype.
	if c.pos < len(c.line) && c.line[c.pos] == '@' {
		for c.pos < len(c.line) && c.line[c.pos] != ' ' && c.line[c.pos] != '\t' && c.line[c.pos] != '.' {
			c.pos++
		}
	} else if strings.HasPrefix(c.line[c.pos:], "^^") {
		c.pos += 2
		if _, err := c.readNode(); err != nil {
			return Term{}, err
		}
	}

	return LiteralTerm(value), nil
}

func unescape(raw string) (string, error) {
	if !strings.ContainsRune(raw, '\\') {
		return raw, nil
	}

	var builder strings.Builder
	builder.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			builder.WriteByte(raw[i])
			continue
		}
		if i+1 >= len(raw) {
			return "", fmt.Errorf("%w: dangling escape", ErrSyntax)
		}
		i++
		switch raw[i] {
		case 't':
			builder.WriteByte('\t')
		case 'n':
			builder.WriteByte('\n')
		case 'r':
			builder.WriteByte('\r')
		case '"':
			builder.WriteByte('"')
		case '\'':
			builder.WriteByte('\'')
		case '\\':
			builder.WriteByte('\\')
		case 'u', 'U':
			width := 4
			if raw[i] == 'U' {
				width = 8
			}
			if i+1+width > len(raw) {
				return "", fmt.Errorf("%w: short unicode escape", ErrSyntax)
			}
			code, err := strconv.ParseUint(raw[i+1:i+1+width], 16, 32)
			if err != nil || !utf8.ValidRune(rune(code)) {
				return "", fmt.Errorf("%w: invalid unicode escape", ErrSyntax)
			}
			builder.WriteRune(rune(code))
			i += width
		default:
			return "", fmt.Errorf("%w: unknown escape \\%c", ErrSyntax, raw[i])
		}
	}
	return builder.String(), nil
}
