// Package convertd is a document conversion gateway. It exposes a single
// HTTP route, POST /{input}/to/{output}, that pipes a request body through
// the parse step of the input format's codec and the encode step of the
// output format's codec, returning the re-encoded document.
//
// Architecture:
//
//   - codec: the Codec interface and the immutable format registry.
//   - document: the shared intermediate document model (an ADF-style node
//     tree) produced by parsers and consumed by encoders.
//   - codec/adf, codec/markdown, codec/wiki, codec/cbor: built-in codecs.
//   - codecregistry: composition root that registers every built-in codec.
//   - gateway, gateway/http: the conversion pipeline and its HTTP surface.
//   - errors: error classification (transient/invalid/fatal) shared by all
//     packages.
//   - config, metric, health: configuration loading, Prometheus metrics,
//     and health reporting.
//
// The registry is constructed once at startup and never mutated afterwards;
// request handling performs pure lookups and threads the parsed document
// from one codec to the other without inspecting it.
package convertd
