// Package driving defines the interfaces through which the outside
// world drives the core (primary/inbound ports). HTTP handlers and the
// drop-directory watcher call these; core services implement them.
package driving
