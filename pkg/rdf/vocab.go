package rdf

// Namespace URIs for the vocabularies attribution metadata is expressed in.
const (
	// NamespaceCC is the Creative Commons Rights Expression Language namespace.
	NamespaceCC = "http://creativecommons.org/ns#"

	// NamespaceDCTerms is the Dublin Core terms namespace.
	NamespaceDCTerms = "http://purl.org/dc/terms/"

	// NamespaceDCElements is the legacy Dublin Core elements namespace.
	NamespaceDCElements = "http://purl.org/dc/elements/1.1/"

	// NamespaceDCMIType is the DCMI type vocabulary (Image, Text, ...).
	NamespaceDCMIType = "http://purl.org/dc/dcmitype/"

	// NamespaceXHTMLVocab is the XHTML vocabulary used by rel="license".
	NamespaceXHTMLVocab = "http://www.w3.org/1999/xhtml/vocab#"

	// NamespaceRDF is the standard RDF namespace.
	NamespaceRDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// Predicates consulted when describing a licensed work.
const (
	PredicateXHTMLLicense    = NamespaceXHTMLVocab + "license"
	PredicateCCLicense       = NamespaceCC + "license"
	PredicateDCTermsLicense  = NamespaceDCTerms + "license"
	PredicateDCTermsTitle    = NamespaceDCTerms + "title"
	PredicateDCTitle         = NamespaceDCElements + "title"
	PredicateDCTermsType     = NamespaceDCTerms + "type"
	PredicateDCType          = NamespaceDCElements + "type"
	PredicateAttributionName = NamespaceCC + "attributionName"
	PredicateAttributionURL  = NamespaceCC + "attributionURL"
	PredicateRDFType         = NamespaceRDF + "type"
)
