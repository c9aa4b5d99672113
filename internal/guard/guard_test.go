package guard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imbue-bit/no-JIT/internal/solver"
	"github.com/imbue-bit/no-JIT/internal/types"
)

// fakeProvider serves a fixed pool state snapshot.
type fakeProvider struct {
	state types.PoolState
	err   error
	calls int
}

func (f *fakeProvider) PoolState(ctx context.Context) (types.PoolState, error) {
	f.calls++
	return f.state, f.err
}

func (f *fakeProvider) Close() error { return nil }

// fakePublisher records every published table.
type fakePublisher struct {
	published [][]types.FeeTier
	err       error
}

func (f *fakePublisher) PublishFeeTiers(ctx context.Context, tiers []types.FeeTier) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	copied := make([]types.FeeTier, len(tiers))
	copy(copied, tiers)
	f.published = append(f.published, copied)
	return "0xdeadbeef", nil
}

func (f *fakePublisher) Close() error { return nil }

func testParams() *types.MarketParameters {
	return &types.MarketParameters{
		MarketAssumptions: types.MarketAssumptions{
			GasUsagePerAttack: 300_000,
			Kappa:             1e-6,
			NominalSwapVolume: 10,
		},
		RatioTiersBps: []uint32{10, 50, 200},
	}
}

func newTestGuard(t *testing.T, provider *fakeProvider, pub *fakePublisher, params *types.MarketParameters) *Guard {
	t.Helper()
	g, err := New(Config{
		Provider:      provider,
		Publisher:     pub,
		Params:        params,
		ConfigName:    DEFAULT_PARAMS_CONFIG_NAME,
		ConfigVersion: DEFAULT_PARAMS_CONFIG_VERSION,
	})
	require.NoError(t, err)
	return g
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	provider := &fakeProvider{}
	pub := &fakePublisher{}

	cases := []struct {
		name string
		cfg  Config
	}{
		{"nil provider", Config{Publisher: pub, Params: testParams(), ConfigName: "x", ConfigVersion: 1}},
		{"nil publisher", Config{Provider: provider, Params: testParams(), ConfigName: "x", ConfigVersion: 1}},
		{"nil params", Config{Provider: provider, Publisher: pub, ConfigName: "x", ConfigVersion: 1}},
		{"empty config name", Config{Provider: provider, Publisher: pub, Params: testParams(), ConfigVersion: 1}},
		{"zero config version", Config{Provider: provider, Publisher: pub, Params: testParams(), ConfigName: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewRejectsDegenerateParams(t *testing.T) {
	provider := &fakeProvider{}
	pub := &fakePublisher{}

	mutations := []func(*types.MarketParameters){
		func(p *types.MarketParameters) { p.GasUsagePerAttack = 0 },
		func(p *types.MarketParameters) { p.Kappa = 0 },
		func(p *types.MarketParameters) { p.NominalSwapVolume = -1 },
		func(p *types.MarketParameters) { p.RatioTiersBps = []uint32{50, 0} },
	}
	for _, mutate := range mutations {
		params := testParams()
		mutate(params)
		_, err := New(Config{
			Provider: provider, Publisher: pub, Params: params,
			ConfigName: "x", ConfigVersion: 1,
		})
		assert.Error(t, err)
	}
}

func TestRunCycleZeroLiquiditySkipsPublication(t *testing.T) {
	provider := &fakeProvider{state: types.PoolState{ActiveLiquidity: 0, GasPrice: 30e9}}
	pub := &fakePublisher{}
	g := newTestGuard(t, provider, pub, testParams())

	g.RunCycle(context.Background())

	assert.Equal(t, 1, provider.calls)
	assert.Empty(t, pub.published, "zero liquidity must produce no publication")
}

func TestRunCycleFetchErrorAbortsWithoutPublication(t *testing.T) {
	provider := &fakeProvider{err: assert.AnError}
	pub := &fakePublisher{}
	g := newTestGuard(t, provider, pub, testParams())

	g.RunCycle(context.Background())

	assert.Empty(t, pub.published)
}

func TestRunCyclePublishesSolvedTiers(t *testing.T) {
	pool := types.PoolState{ActiveLiquidity: 1_000_000, Tick: 100, GasPrice: 30e9}
	provider := &fakeProvider{state: pool}
	pub := &fakePublisher{}
	params := testParams()
	g := newTestGuard(t, provider, pub, params)

	g.RunCycle(context.Background())

	require.Len(t, pub.published, 1)
	want, err := solver.SolveTiers(params.RatioTiersBps, pool, params.MarketAssumptions)
	require.NoError(t, err)
	assert.Equal(t, want, pub.published[0])

	// Configured tier order is preserved in the published table.
	for i, ratioBps := range params.RatioTiersBps {
		assert.Equal(t, ratioBps, pub.published[0][i].RatioBps)
	}
}

func TestRunCycleSkipsUnchangedTable(t *testing.T) {
	pool := types.PoolState{ActiveLiquidity: 1_000_000, GasPrice: 30e9}
	provider := &fakeProvider{state: pool}
	pub := &fakePublisher{}
	g := newTestGuard(t, provider, pub, testParams())

	g.RunCycle(context.Background())
	g.RunCycle(context.Background())

	assert.Len(t, pub.published, 1, "identical table must not be republished")
	assert.Equal(t, 2, provider.calls, "state is still re-fetched every cycle")
}

func TestRunCycleRepublishesWhenTableChanges(t *testing.T) {
	// A deep pool keeps the attack unprofitable and pins the fee floor; a
	// shallow pool makes it pay at every rate and saturates the band.
	provider := &fakeProvider{state: types.PoolState{ActiveLiquidity: 1_000_000, GasPrice: 30e9}}
	pub := &fakePublisher{}
	g := newTestGuard(t, provider, pub, testParams())

	g.RunCycle(context.Background())
	provider.state = types.PoolState{ActiveLiquidity: 100, GasPrice: 30e9}
	g.RunCycle(context.Background())

	require.Len(t, pub.published, 2)
	assert.NotEqual(t, pub.published[0], pub.published[1])
}

func TestRunCycleRetriesPublicationNextCycle(t *testing.T) {
	pool := types.PoolState{ActiveLiquidity: 1_000_000, GasPrice: 30e9}
	provider := &fakeProvider{state: pool}
	pub := &fakePublisher{err: assert.AnError}
	g := newTestGuard(t, provider, pub, testParams())

	g.RunCycle(context.Background())
	require.Empty(t, pub.published)

	// Publication failures leave no stale comparison state behind; the next
	// cycle recomputes and publishes the same table.
	pub.err = nil
	g.RunCycle(context.Background())
	assert.Len(t, pub.published, 1)
}

func TestFeeTiersZeroLiquidityYieldsNoRecords(t *testing.T) {
	g := newTestGuard(t, &fakeProvider{}, &fakePublisher{}, testParams())

	tiers, err := g.FeeTiers(types.PoolState{ActiveLiquidity: 0})
	require.NoError(t, err)
	assert.Empty(t, tiers)
}
