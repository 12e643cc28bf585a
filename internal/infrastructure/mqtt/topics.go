package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when the config leaves topic_prefix empty.
const DefaultTopicPrefix = "nilmlab"

// Topics builds nilmlab topic names under a prefix.
//
//	topics := mqtt.Topics{Prefix: "nilmlab"}
//	topics.Summary("fridge-kettle")
//	// Returns: "nilmlab/summary/fridge-kettle"
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return strings.TrimSuffix(t.Prefix, "/")
}

// Status is the retained online/offline topic of this process.
//
// Example: nilmlab/status
func (t Topics) Status() string {
	return t.prefix() + "/status"
}

// Summary is the topic a preparation run summary is published on.
// Characters that are MQTT wildcards or separators are replaced with '-'.
//
// Example: nilmlab/summary/fridge-kettle
func (t Topics) Summary(experiment string) string {
	return fmt.Sprintf("%s/summary/%s", t.prefix(), sanitizeLevel(experiment))
}

// Ingest is the topic an import of one building is reported on.
//
// Example: nilmlab/ingest/building-1
func (t Topics) Ingest(building int) string {
	return fmt.Sprintf("%s/ingest/building-%d", t.prefix(), building)
}

// AllSummaries matches every summary topic.
//
// Example: nilmlab/summary/+
func (t Topics) AllSummaries() string {
	return t.prefix() + "/summary/+"
}

// sanitizeLevel makes s usable as a single topic level.
func sanitizeLevel(s string) string {
	if s == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '+', '#', ' ':
			return '-'
		}
		return r
	}, s)
}
