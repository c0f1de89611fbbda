// Package gateway implements the conversion pipeline: resolve the input
// codec, resolve the output codec, parse the body, encode the document.
//
// Every failure is classified at the point it is detected and carried to
// the HTTP boundary as a ConversionError naming the failing stage and the
// offending format identifier. The pipeline performs no retries and
// produces no partial output: a request yields either a fully converted
// body or a single classified failure.
//
// The HTTP surface lives in the gateway/http subpackage.
package gateway
