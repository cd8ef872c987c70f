/*
Package session implements multi-workflow session management.

It pairs each open workflow with a live engine and a record of in-flight
generations, serializing access per session so concurrent hosts (HTTP
handlers, CLI commands) never race on the same graph.
*/
package session
