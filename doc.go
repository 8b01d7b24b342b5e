/*
Package fetchmock holds the runtime configuration and host-call errors shared
by the fetchmock packages.

fetchmock replaces outbound fetches with canned responses so tests run without
a network. The pieces live in sub-packages:

  - pattern compiles literal, wildcard, and regular expression URL patterns.
  - registry stores mock rules and matches requests against them.
  - fetch defines the Fetcher seam, the swappable Client entry point, and the
    real host and net/http fetchers.
  - interceptor installs mocks into a Client, dispatches requests, and restores
    the original fetcher on Clear.

A typical test:

	client := fetch.NewClient(realFetcher)
	m, _ := interceptor.New(interceptor.Config{Client: client})
	defer m.Clear()

	_ = m.Mock("https://api.example.com/users/*", registry.Options{Data: map[string]int{"id": 1}})

	resp, err := client.Get("https://api.example.com/users/42")
	// resp.JSON(&v) yields {"id": 1}
*/
package fetchmock
