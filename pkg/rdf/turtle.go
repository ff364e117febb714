package rdf

import (
	"fmt"
	"sort"
	"strings"
)

// PrefixMapping associates a short prefix label with its full namespace URI.
type PrefixMapping struct {
	Prefix    string
	Namespace string
}

// TurtleSerializer converts a statement sequence into Turtle (TTL) format.
type TurtleSerializer struct {
	prefixMappings []PrefixMapping
	prefixIndex    map[string]string // prefix -> namespace
	namespaceIndex map[string]string // namespace -> prefix
}

// TurtleOption is a functional option for configuring the TurtleSerializer.
type TurtleOption func(*TurtleSerializer)

// NewTurtleSerializer creates a TurtleSerializer with the attribution
// vocabulary prefixes declared.
func NewTurtleSerializer(options ...TurtleOption) *TurtleSerializer {
	serializer := &TurtleSerializer{
		prefixMappings: defaultPrefixMappings(),
	}

	for _, option := range options {
		option(serializer)
	}

	serializer.rebuildIndexes()

	return serializer
}

// WithPrefix adds or overrides a prefix mapping.
func WithPrefix(prefix, namespace string) TurtleOption {
	return func(serializer *TurtleSerializer) {
		serializer.prefixMappings = append(serializer.prefixMappings, PrefixMapping{
			Prefix:    prefix,
			Namespace: namespace,
		})
	}
}

// WithoutDefaultPrefixes clears default prefixes so only custom ones are used.
func WithoutDefaultPrefixes() TurtleOption {
	return func(serializer *TurtleSerializer) {
		serializer.prefixMappings = nil
	}
}

func defaultPrefixMappings() []PrefixMapping {
	return []PrefixMapping{
		{Prefix: "rdf", Namespace: NamespaceRDF},
		{Prefix: "cc", Namespace: NamespaceCC},
		{Prefix: "dct", Namespace: NamespaceDCTerms},
		{Prefix: "dc", Namespace: NamespaceDCElements},
		{Prefix: "dcmitype", Namespace: NamespaceDCMIType},
		{Prefix: "xhv", Namespace: NamespaceXHTMLVocab},
	}
}

func (serializer *TurtleSerializer) rebuildIndexes() {
	serializer.prefixIndex = make(map[string]string, len(serializer.prefixMappings))
	serializer.namespaceIndex = make(map[string]string, len(serializer.prefixMappings))

	for _, mapping := range serializer.prefixMappings {
		serializer.prefixIndex[mapping.Prefix] = mapping.Namespace
		serializer.namespaceIndex[mapping.Namespace] = mapping.Prefix
	}
}

// Serialize converts statements to Turtle, grouped by subject. Subjects and
// predicates are sorted so output is stable; duplicate statements collapse.
func (serializer *TurtleSerializer) Serialize(statements []Statement) string {
	var builder strings.Builder

	serializer.writePrefixDeclarations(&builder)

	subjectGroups := groupBySubject(statements)
	sortedSubjects := sortedKeys(subjectGroups)

	for subjectIndex, subject := range sortedSubjects {
		if subjectIndex > 0 {
			builder.WriteString("\n")
		}
		serializer.writeSubjectGroup(&builder, subject, subjectGroups[subject])
	}

	return builder.String()
}

func (serializer *TurtleSerializer) writePrefixDeclarations(builder *strings.Builder) {
	sortedPrefixes := make([]PrefixMapping, len(serializer.prefixMappings))
	copy(sortedPrefixes, serializer.prefixMappings)
	sort.Slice(sortedPrefixes, func(i, j int) bool {
		return sortedPrefixes[i].Prefix < sortedPrefixes[j].Prefix
	})

	for _, mapping := range sortedPrefixes {
		fmt.Fprintf(builder, "@prefix %s: <%s> .\n", mapping.Prefix, mapping.Namespace)
	}

	if len(serializer.prefixMappings) > 0 {
		builder.WriteString("\n")
	}
}

// groupBySubject organizes statements into subject -> predicate -> []object.
func groupBySubject(statements []Statement) map[string]map[string][]Term {
	subjectGroups := make(map[string]map[string][]Term)

	for _, statement := range statements {
		subject := statement.Subject.URI
		predicate := statement.Predicate.URI
		if _, exists := subjectGroups[subject]; !exists {
			subjectGroups[subject] = make(map[string][]Term)
		}
		if containsTerm(subjectGroups[subject][predicate], statement.Object) {
			continue
		}
		subjectGroups[subject][predicate] = append(subjectGroups[subject][predicate], statement.Object)
	}

	return subjectGroups
}

func containsTerm(terms []Term, term Term) bool {
	for _, existing := range terms {
		if existing == term {
			return true
		}
	}
	return false
}

func (serializer *TurtleSerializer) writeSubjectGroup(
	builder *strings.Builder,
	subject string,
	predicateObjectMap map[string][]Term,
) {
	builder.WriteString(serializer.formatResource(subject))

	sortedPredicates := sortPredicatesTypeFirst(predicateObjectMap)

	for predicateIndex, predicate := range sortedPredicates {
		objects := predicateObjectMap[predicate]
		sort.Slice(objects, func(i, j int) bool {
			if objects[i].Kind != objects[j].Kind {
				return objects[i].Kind < objects[j].Kind
			}
			return objects[i].Value < objects[j].Value
		})

		if predicateIndex == 0 {
			builder.WriteString(" ")
		} else {
			builder.WriteString(" ;\n    ")
		}

		builder.WriteString(serializer.formatPredicate(predicate))

		for objectIndex, object := range objects {
			if objectIndex > 0 {
				builder.WriteString(" ,\n        ")
			} else {
				builder.WriteString(" ")
			}
			builder.WriteString(serializer.formatObject(object))
		}
	}

	builder.WriteString(" .\n")
}

// formatResource formats a subject or resource object.
func (serializer *TurtleSerializer) formatResource(value string) string {
	if strings.HasPrefix(value, "_:") {
		return value
	}
	if compacted, ok := serializer.compactURI(value); ok {
		return compacted
	}
	return "<" + escapeIRI(value) + ">"
}

// formatPredicate formats a predicate, using "a" shorthand for rdf:type.
func (serializer *TurtleSerializer) formatPredicate(predicate string) string {
	if predicate == PredicateRDFType {
		return "a"
	}
	return serializer.formatResource(predicate)
}

func (serializer *TurtleSerializer) formatObject(object Term) string {
	switch object.Kind {
	case KindResource:
		return serializer.formatResource(object.Value)
	case KindLiteral:
		return formatLiteral(object.Value)
	default:
		return `""`
	}
}

// compactURI replaces a full namespace URI with its prefix form.
func (serializer *TurtleSerializer) compactURI(fullURI string) (string, bool) {
	// Longest namespace wins.
	bestPrefix := ""
	bestNamespace := ""
	for namespace, prefix := range serializer.namespaceIndex {
		if strings.HasPrefix(fullURI, namespace) && len(namespace) > len(bestNamespace) {
			localName := fullURI[len(namespace):]
			if isValidLocalName(localName) {
				bestPrefix = prefix
				bestNamespace = namespace
			}
		}
	}

	if bestNamespace != "" {
		return bestPrefix + ":" + fullURI[len(bestNamespace):], true
	}
	return "", false
}

// sortPredicatesTypeFirst sorts predicates with rdf:type first, then alphabetically.
func sortPredicatesTypeFirst(predicateObjectMap map[string][]Term) []string {
	predicates := make([]string, 0, len(predicateObjectMap))
	hasRDFType := false

	for predicate := range predicateObjectMap {
		if predicate == PredicateRDFType {
			hasRDFType = true
		} else {
			predicates = append(predicates, predicate)
		}
	}

	sort.Strings(predicates)

	if hasRDFType {
		predicates = append([]string{PredicateRDFType}, predicates...)
	}

	return predicates
}

// isValidLocalName checks if a string is usable as a Turtle local name.
func isValidLocalName(localName string) bool {
	if localName == "" {
		return false
	}
	return !strings.ContainsAny(localName, " \t\n\r<>\"{}|^`\\/#?&=%.:~+")
}

// formatLiteral wraps a string value in Turtle-compliant double quotes.
func formatLiteral(value string) string {
	escaped := escapeLiteralString(value)

	if strings.Contains(value, "\n") {
		return `"""` + escaped + `"""`
	}

	return `"` + escaped + `"`
}

// escapeLiteralString escapes special characters per W3C Turtle spec.
func escapeLiteralString(value string) string {
	var builder strings.Builder
	builder.Grow(len(value) + len(value)/8)

	for _, char := range value {
		switch char {
		case '\\':
			builder.WriteString(`\\`)
		case '"':
			builder.WriteString(`\"`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\t':
			builder.WriteString(`\t`)
		default:
			builder.WriteRune(char)
		}
	}

	return builder.String()
}

// escapeIRI escapes characters not allowed in IRIs within angle brackets.
func escapeIRI(iri string) string {
	var builder strings.Builder
	builder.Grow(len(iri))

	for _, char := range iri {
		switch char {
		case '<':
			builder.WriteString(`\u003C`)
		case '>':
			builder.WriteString(`\u003E`)
		case '"':
			builder.WriteString(`\u0022`)
		case ' ':
			builder.WriteString(`\u0020`)
		case '{':
			builder.WriteString(`\u007B`)
		case '}':
			builder.WriteString(`\u007D`)
		default:
			builder.WriteRune(char)
		}
	}

	return builder.String()
}

// sortedKeys returns the keys of a map sorted alphabetically.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
