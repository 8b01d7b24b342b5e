/*
Package pattern compiles the URL patterns used to key mock rules.

A Pattern is one of three variants: a literal URL, a wildcard string where "*"
matches any substring, or a regular expression. Compile turns any of them into
a Matcher, whose String form is the canonical pattern string used to detect
duplicate registrations.

Literals and wildcards are escaped and anchored, so "https://x.test/a" never
matches "https://x.test/ab". Regular expressions are used as given and match
anywhere in the URL.
*/
package pattern
