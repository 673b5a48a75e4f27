package config

import (
	"bytes"
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	cfg, err := Parse("elasticq", []string{"-p", "3", "-c", "2", "-s", "4", "-t", "250"}, out)
	require.NoError(t, err)

	assert.Equal(3, cfg.Worker.Producers)
	assert.Equal(2, cfg.Worker.Consumers)
	assert.Equal(4, cfg.QueueSize)
	assert.Equal(250*time.Millisecond, cfg.Worker.ConsumerDelay)

	// Defaults
	assert.Equal(1, cfg.Worker.ItemsPerProducer)
	assert.Equal(100*time.Millisecond, cfg.Worker.ProducerDelay)
	assert.Equal(2*time.Second, cfg.Worker.Grace)
	assert.Equal(0, cfg.MaxQueueSize)
	assert.Equal("elasticq.log", cfg.LogFile)
	assert.Nil(cfg.Telemetry)
	assert.Nil(cfg.QuestDB)

	assert.Empty(out.String())
}

func Test_Parse_OptionalFlags(t *testing.T) {
	assert := assert.New(t)

	args := []string{
		"-p", "1", "-c", "1", "-s", "2", "-t", "0",
		"-n", "50", "-pd", "5", "-grace", "3s", "-max", "64",
		"-log", "run.log", "-otlp", "-questdb", "127.0.0.1:9000", "-v",
	}

	cfg, err := Parse("elasticq", args, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(50, cfg.Worker.ItemsPerProducer)
	assert.Equal(5*time.Millisecond, cfg.Worker.ProducerDelay)
	assert.Equal(3*time.Second, cfg.Worker.Grace)
	assert.Equal(64, cfg.MaxQueueSize)
	assert.Equal("run.log", cfg.LogFile)
	assert.True(cfg.Verbose)

	if assert.NotNil(cfg.Telemetry) {
		assert.Equal("elasticq", cfg.Telemetry.ServiceName)
	}
	if assert.NotNil(cfg.QuestDB) {
		assert.Equal("127.0.0.1:9000", cfg.QuestDB.Address)
	}
}

func Test_Parse_UsageErrors(t *testing.T) {
	cases := []struct {
		name     string
		args     []string
		contains string
	}{
		{"no arguments", []string{}, "missing required flags: -p, -c, -s, -t"},
		{"missing one flag", []string{"-p", "1", "-c", "1", "-s", "1"}, "-t"},
		{"positional leftovers", []string{"-p", "1", "-c", "1", "-s", "1", "-t", "1", "extra"}, "unexpected arguments: extra"},
		{"malformed value", []string{"-p", "x", "-c", "1", "-s", "1", "-t", "1"}, "invalid value"},
		{"unknown flag", []string{"-z", "1"}, "flag provided but not defined"},
		{"zero queue size", []string{"-p", "1", "-c", "1", "-s", "0", "-t", "1"}, "queue size must be at least 1"},
		{"no producers", []string{"-p", "0", "-c", "1", "-s", "1", "-t", "1"}, "producers must be at least 1"},
		{"negative delay", []string{"-p", "1", "-c", "1", "-s", "1", "-t", "-5"}, "consumer delay"},
		{"ceiling below size", []string{"-p", "1", "-c", "1", "-s", "8", "-t", "1", "-max", "4"}, "maximum queue size"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			out := &bytes.Buffer{}
			cfg, err := Parse("elasticq", tc.args, out)

			assert.Nil(cfg)
			assert.ErrorIs(err, ErrUsage)
			assert.Contains(out.String(), tc.contains)
			assert.Contains(out.String(), "Usage: elasticq")
		})
	}
}

func Test_Parse_Help(t *testing.T) {
	out := &bytes.Buffer{}
	_, err := Parse("elasticq", []string{"-h"}, out)

	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, out.String(), "Usage: elasticq")
}

func Test_Validate(t *testing.T) {
	assert := assert.New(t)

	cfg := NewDefault()
	assert.NoError(cfg.Validate())

	cfg.QueueSize = 0
	cfg.LogFile = ""
	cfg.Worker = nil

	err := cfg.Validate()
	assert.ErrorIs(err, ErrUsage)
	assert.Contains(err.Error(), "queue size")
	assert.Contains(err.Error(), "log file")
	assert.Contains(err.Error(), "worker configuration")
}
