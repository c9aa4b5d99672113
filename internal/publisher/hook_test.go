package publisher

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGovernorKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func testClient(t *testing.T) *ethclient.Client {
	t.Helper()
	// HTTP transport dials lazily; no node is contacted here.
	client, err := ethclient.Dial("http://127.0.0.1:8545")
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestNewHookPublisher(t *testing.T) {
	pub, err := NewHookPublisher(testClient(t), common.HexToAddress("0x1"), 8453, testGovernorKey, 500_000, 1.2)
	require.NoError(t, err)
	assert.NotNil(t, pub)
}

func TestNewHookPublisherAcceptsPrefixedKey(t *testing.T) {
	_, err := NewHookPublisher(testClient(t), common.HexToAddress("0x1"), 8453, "0x"+testGovernorKey, 500_000, 1.2)
	assert.NoError(t, err)
}

func TestNewHookPublisherRejectsInvalidInputs(t *testing.T) {
	client := testClient(t)

	_, err := NewHookPublisher(nil, common.HexToAddress("0x1"), 8453, testGovernorKey, 500_000, 1.2)
	assert.Error(t, err, "nil client")

	_, err = NewHookPublisher(client, common.HexToAddress("0x1"), 8453, "not-a-key", 500_000, 1.2)
	assert.Error(t, err, "malformed key")

	_, err = NewHookPublisher(client, common.HexToAddress("0x1"), 8453, testGovernorKey, 0, 1.2)
	assert.Error(t, err, "zero gas limit")

	_, err = NewHookPublisher(client, common.HexToAddress("0x1"), 8453, testGovernorKey, 500_000, 0.9)
	assert.Error(t, err, "fee cap multiplier below 1")
}

func TestSetFeeTiersEncoding(t *testing.T) {
	pub, err := NewHookPublisher(testClient(t), common.HexToAddress("0x1"), 8453, testGovernorKey, 500_000, 1.2)
	require.NoError(t, err)

	method, ok := pub.abi.Methods["setFeeTiers"]
	require.True(t, ok)
	assert.Equal(t, "setFeeTiers((uint128,uint24)[])", method.Sig)
}
