/*
Package fetch defines the seam between code that fetches and whatever answers
the fetch.

Fetcher is a single-method capability. Client is the entry point code under
test holds: it forwards to a bound Fetcher that can be swapped at runtime, and
offers Get, Post, Put, Delete and Do(url, init) helpers on top. Two real
fetchers are provided: HostFetcher sends protobuf payloads to the Tarmac host
over waPC, and NetFetcher uses a standard library *http.Client.

Requests and responses are single-shot: bodies are held in memory. Response.JSON
decodes a body the way JSON-consuming callers expect.
*/
package fetch
