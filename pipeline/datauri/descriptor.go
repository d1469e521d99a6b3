// Package datauri decodes base64 data URIs into byte buffers under the same
// pacing discipline the transcoder follows: decode cost is predicted up
// front and the pacing agent decides whether the decode runs inline, on a
// worker, or waits for the next tick.
package datauri

import "strings"

const (
	scheme       = "data:"
	base64Marker = ";base64,"

	// mimeSearchBound caps how far the descriptor probe scans for the MIME
	// delimiter, so a pathological input cannot turn the probe into a walk
	// over megabytes of payload.
	mimeSearchBound = 1000
)

// Descriptor locates the payload of a data URI without decoding it. Derived
// once from the URI string, immutable, and consumed by exactly one decode
// call.
type Descriptor struct {
	MimeType string
	// PayloadStart is the offset of the first base64 payload byte.
	PayloadStart int
	// DecodedLength is the exact decoded byte count, computed from the
	// base64 character count minus trailing padding.
	DecodedLength int
}

// TryDescriptor probes uri for the data-URI shape
// "data:<mime>;base64,<payload>". It reports false for anything else:
// missing scheme, MIME delimiter out of search range, missing base64 marker,
// or a payload whose length is not a whole number of base64 quads.
func TryDescriptor(uri string) (Descriptor, bool) {
	if !strings.HasPrefix(uri, scheme) {
		return Descriptor{}, false
	}

	bound := len(uri)
	if bound > len(scheme)+mimeSearchBound {
		bound = len(scheme) + mimeSearchBound
	}
	semi := strings.IndexByte(uri[len(scheme):bound], ';')
	if semi < 0 {
		return Descriptor{}, false
	}
	mimeEnd := len(scheme) + semi

	if !strings.HasPrefix(uri[mimeEnd:], base64Marker) {
		return Descriptor{}, false
	}
	payloadStart := mimeEnd + len(base64Marker)

	payload := uri[payloadStart:]
	if len(payload)%4 != 0 {
		return Descriptor{}, false
	}

	padding := 0
	for i := len(payload) - 1; i >= 0 && payload[i] == '='; i-- {
		padding++
	}
	if padding > 2 {
		return Descriptor{}, false
	}

	return Descriptor{
		MimeType:      uri[len(scheme):mimeEnd],
		PayloadStart:  payloadStart,
		DecodedLength: len(payload)/4*3 - padding,
	}, true
}
