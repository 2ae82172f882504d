package postgres

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupIPv4_IPLiteral(t *testing.T) {
	ip, err := lookupIPv4(t.Context(), net.DefaultResolver, "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", ip)

	_, err = lookupIPv4(t.Context(), net.DefaultResolver, "::1")
	assert.Error(t, err)
}
