/*
Package metrics reports fetchmock activity through the Tarmac host runtime.

HostMetrics creates Counter and Gauge handles backed by protobuf payloads sent
over waPC host calls. HostRecorder builds on them to count registrations,
duplicate registrations, dispatch hits and misses, and to track the number of
active rules. Nop ignores everything and is what the interceptor uses when no
Recorder is configured.

Emission is best-effort: Inc and Dec do not return errors, and marshal or
host-call failures are swallowed so they never change the outcome of a mocked
fetch.
*/
package metrics
