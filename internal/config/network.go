package config

import "fmt"

// Network identifies which Cardano network the orchestrator is managing.
type Network string

const (
	NetworkMainnet  Network = "mainnet"
	NetworkTestnetA Network = "testnet-a"
	NetworkTestnetB Network = "testnet-b"
)

// ParseNetwork converts a user-supplied string (CLI flag, config file, env
// var) into a Network, accepting common aliases for the two testnets.
func ParseNetwork(s string) (Network, error) {
	switch s {
	case "mainnet":
		return NetworkMainnet, nil
	case "testnet-a", "preview":
		return NetworkTestnetA, nil
	case "testnet-b", "preprod":
		return NetworkTestnetB, nil
	default:
		return "", fmt.Errorf("unknown network %q (want mainnet, testnet-a, testnet-b)", s)
	}
}

func (n Network) String() string { return string(n) }

// TopologyPeer is a single bootstrap relay address baked in as the default
// topology for a network.
type TopologyPeer struct {
	Address string `toml:"address" json:"address"`
	Port    int    `toml:"port" json:"port"`
}

// NetworkDefaults bundles the handful of network-specific constants the
// node needs on first run, before any user override is applied.
type NetworkDefaults struct {
	Magic           int
	GenesisHash     string
	AggregatorURL   string
	ConfigURL       string
	DefaultTopology []TopologyPeer
}

// defaultsByNetwork mirrors the network parameter tables shipped with the
// reference node distribution: magic numbers, genesis hashes and Mithril
// aggregator endpoints are fixed per network and never user-configurable,
// only overridable for the aggregator URL (air-gapped/mirror deployments).
var defaultsByNetwork = map[Network]NetworkDefaults{
	NetworkMainnet: {
		Magic:         764824073,
		GenesisHash:   "5f20df933584822601f9e3f8c024eb5eb252fe8cefb24d1317dc3d432e940ebb",
		AggregatorURL: "https://aggregator.release-mainnet.api.mithril.network/aggregator",
		ConfigURL:     "https://book.play.dev.cardano.org/environments/mainnet/config.json",
		DefaultTopology: []TopologyPeer{
			{Address: "backbone.cardano.iog.io", Port: 3001},
			{Address: "backbone.mainnet.cardanofoundation.org", Port: 3001},
		},
	},
	NetworkTestnetA: {
		Magic:         2,
		GenesisHash:   "88e4603414d445f6664c6293cc91b44dbf18ea61da91ca4c1c4cd57c0bf3120d",
		AggregatorURL: "https://aggregator.pre-release-preview.api.mithril.network/aggregator",
		ConfigURL:     "https://book.play.dev.cardano.org/environments/preview/config.json",
		DefaultTopology: []TopologyPeer{
			{Address: "preview-node.world.dev.cardano.org", Port: 30002},
		},
	},
	NetworkTestnetB: {
		Magic:         1,
		GenesisHash:   "153d0cf78bc6d5c64e3f1cfbe2c1d22ac7b4f15d2afce7f3e5b5d9cd3aa2b1d6",
		AggregatorURL: "https://aggregator.release-preprod.api.mithril.network/aggregator",
		ConfigURL:     "https://book.play.dev.cardano.org/environments/preprod/config.json",
		DefaultTopology: []TopologyPeer{
			{Address: "preprod-node.world.dev.cardano.org", Port: 30000},
		},
	},
}

// Defaults returns the built-in parameter set for n. It panics if n is not
// one of the three constants above, since that would indicate a bug in
// ParseNetwork rather than bad user input.
func (n Network) Defaults() NetworkDefaults {
	d, ok := defaultsByNetwork[n]
	if !ok {
		panic(fmt.Sprintf("config: no defaults registered for network %q", n))
	}
	return d
}
