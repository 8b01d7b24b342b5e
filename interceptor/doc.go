/*
Package interceptor replaces a fetch entry point with canned responses for
tests.

An Interceptor is one self-contained mocking context: it owns a registry of
rules and remembers whatever it displaced when it was installed. Several
Interceptors can coexist, each bound to its own fetch.Client.

# Lifecycle

The interceptor starts uninstalled. The first successful Register or Mock
swaps it into the configured fetch.Client (and, if set, into the Transport of
the configured *http.Client), remembering the originals. Further registrations
leave the saved originals alone. Clear empties the rules and puts the originals
back; the next registration captures them again from scratch.

	client := fetch.NewClient(fetch.NewNetFetcher(nil))
	m, _ := interceptor.New(interceptor.Config{Client: client})
	defer m.Clear()

	_ = m.Mock("https://api.example.com/*", registry.Options{Data: map[string]any{"ok": true}})
	_ = m.Register(pattern.Expr(`/users/\d+`), registry.Options{Data: map[string]int{"id": 1}})

# Dispatch

Requests are matched against the rules in registration order. A match yields a
response carrying the rule's status, headers, and JSON body. A miss yields a
*NotFoundError with Status 404, OK false, StatusText "Not Found" and the URL;
errors.Is(err, ErrNotFound) holds for it.

The same dispatch is reachable three ways: Fetch (fetch.Fetcher), RoundTrip
(http.RoundTripper), and HostCall (the waPC host function signature used by
fetch.HostFetcher).
*/
package interceptor
