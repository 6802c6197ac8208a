// Package statsd wraps the datadog statsd client so the rest of the server only sees a handful of emit helpers.
// Until Init succeeds every call goes to a no-op client.
package statsd

import (
	"strings"
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace"
)

var (
	client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}
	tags   []string
)

func Client() ddstatsd.ClientInterface {
	return client
}

// EmitTickStat records the time elapsed since start under the "tick" timing, tagged with stage.
func EmitTickStat(start time.Time, stage string) {
	duration := time.Since(start)
	err := Client().Timing("tick", duration, []string{"stage:" + stage}, 1)
	if err != nil {
		log.Logger.Warn().Msgf("failed to emit tick stat: %v", err)
	}
}

// EmitCount records a per-tick counter such as the number of deferred tasks run.
func EmitCount(name string, value int64) {
	if err := Client().Count(name, value, nil, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit count %q: %v", name, err)
	}
}

// TagSpan copies the global metric tags onto a trace span so metrics and traces can be joined.
func TagSpan(span ddtrace.Span) {
	for _, tag := range tags {
		key, value := tagToTraceTag(tag)
		if value == nil {
			continue
		}
		span.SetTag(key, value)
	}
}

// tagToTraceTag splits a "key:value" metric tag. A tag without a value yields a nil value.
func tagToTraceTag(tag string) (string, any) {
	tag = strings.TrimPrefix(tag, ":")
	key, value, found := strings.Cut(tag, ":")
	if !found || value == "" {
		return key, nil
	}
	return key, value
}

func Init(address string, globalTags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	opts := []ddstatsd.Option{
		// The statsd namespace is the prefix of all metrics
		ddstatsd.WithNamespace("blockshard"),
	}
	if len(globalTags) > 0 {
		opts = append(opts, ddstatsd.WithTags(globalTags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return eris.Wrap(err, "failed to create statsd client")
	}
	client = newClient
	tags = globalTags
	return nil
}
