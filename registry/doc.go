/*
Package registry stores mock rules and matches requests against them.

Rules are kept in registration order. Two comparators are used and they are
deliberately separate:

  - Registration compares rule keys, the canonical pattern string plus the
    canonical request-init criterion. A second Add with an equal key is a
    no-op that returns the rule already registered.
  - Dispatch (Match) tests each rule's matcher against the request URL and, if
    the rule carries an init criterion, requires the request's init to be
    equal to it. The first rule that accepts wins.

Response bodies are encoded once, when the rule is built, so data that cannot
be serialized fails at registration rather than at dispatch.
*/
package registry
