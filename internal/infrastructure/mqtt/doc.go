// Package mqtt publishes nilmlab results to an MQTT broker.
//
// The client is publish-only. It announces a retained online status on
// <prefix>/status when it connects and registers an offline Last Will on
// the same topic. Preparation summaries go to <prefix>/summary/<experiment>
// and building imports to <prefix>/ingest/building-<n>, both retained.
//
// MQTT is optional: Connect returns ErrDisabled when the config turns it
// off, and callers treat that as "nothing to publish to".
package mqtt
