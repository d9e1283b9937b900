package main

import (
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRejectsBadArgs(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"too many positional args", []string{"127.0.0.1", "3000", "extra"}},
		{"port is not a number", []string{"127.0.0.1", "http"}},
		{"port out of range", []string{"127.0.0.1", "70000"}},
		{"http3 cert without key", []string{"--http3-cert", "cert.pem"}},
		{"unknown flag", []string{"--verbose"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := newRootCommand()
			cmd.SetArgs(tc.args)
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)

			assert.Error(t, cmd.Execute())
		})
	}
}

func TestRootCommandFlagDefaults(t *testing.T) {
	cmd := newRootCommand()
	flags := cmd.Flags()

	correct, err := flags.GetBool("correct-mimes")
	require.NoError(t, err)
	assert.True(t, correct)

	download, err := flags.GetBool("download")
	require.NoError(t, err)
	assert.True(t, download)

	endpoint, err := flags.GetString("otlp-endpoint")
	require.NoError(t, err)
	assert.Empty(t, endpoint)
}

func TestAnnounce(t *testing.T) {
	var out bytes.Buffer

	announce(&out)(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 3000})

	assert.Contains(t, out.String(), "Serving at ")
	assert.Contains(t, out.String(), "127.0.0.1:3000")
}
