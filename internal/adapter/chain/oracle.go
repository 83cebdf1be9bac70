package chain

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"promo-order-bot/config"
	"promo-order-bot/internal/core/domain"
	"promo-order-bot/pkg/apperror"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var txnHashRe = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// rpcClient is the subset of ethclient.Client the oracle needs.
type rpcClient interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

type networkBackend struct {
	client rpcClient
	wallet string
}

// Oracle validates native-coin transfers against EVM chains over JSON-RPC.
// All supported networks use 18-decimal native coins.
type Oracle struct {
	backends  map[domain.Network]networkBackend
	tolerance decimal.Decimal
	log       zerolog.Logger
}

// NewOracle dials every configured network RPC endpoint.
func NewOracle(cfg config.ChainConfig, log zerolog.Logger) (*Oracle, error) {
	tolerance, err := decimal.NewFromString(cfg.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("parsing chain tolerance %q: %w", cfg.Tolerance, err)
	}

	backends := make(map[domain.Network]networkBackend, len(cfg.Networks))
	for name, nc := range cfg.Networks {
		network := domain.Network(name)
		if !network.Valid() {
			return nil, fmt.Errorf("unknown network in config: %s", name)
		}
		client, err := ethclient.Dial(nc.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("dialing %s rpc: %w", name, err)
		}
		backends[network] = networkBackend{client: client, wallet: nc.WalletAddress}
		log.Info().Str("network", name).Msg("chain rpc connected")
	}

	return &Oracle{
		backends:  backends,
		tolerance: tolerance,
		log:       log.With().Str("component", "chain_oracle").Logger(),
	}, nil
}

// newOracleWithBackends wires pre-built backends, for tests.
func newOracleWithBackends(backends map[domain.Network]networkBackend, tolerance decimal.Decimal, log zerolog.Logger) *Oracle {
	return &Oracle{backends: backends, tolerance: tolerance, log: log}
}

// WalletAddress returns the deposit address configured for a network.
func (o *Oracle) WalletAddress(network domain.Network) (string, error) {
	b, ok := o.backends[network]
	if !ok {
		return "", apperror.ErrUnsupportedNetwork(string(network))
	}
	return b.wallet, nil
}

// Validate checks that the transaction exists, was mined successfully, pays
// the expected deposit address, and carries the expected native-coin amount
// within the configured absolute tolerance. A malformed hash, a missing or
// pending transaction, and any field mismatch all return (false, nil);
// transport failures return (false, err).
func (o *Oracle) Validate(ctx context.Context, txnHash string, network domain.Network, expectedAmount decimal.Decimal, toAddress string) (bool, error) {
	log := o.log.With().Str("txn_hash", txnHash).Str("network", string(network)).Logger()

	if !txnHashRe.MatchString(txnHash) {
		log.Warn().Msg("malformed transaction hash")
		return false, nil
	}

	b, ok := o.backends[network]
	if !ok {
		return false, apperror.ErrUnsupportedNetwork(string(network))
	}

	tx, pending, err := b.client.TransactionByHash(ctx, common.HexToHash(txnHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			log.Debug().Msg("transaction not found on chain")
			return false, nil
		}
		return false, apperror.ErrChainUnavailable(err)
	}
	if pending {
		log.Debug().Msg("transaction still pending")
		return false, nil
	}

	if tx.To() == nil || !strings.EqualFold(tx.To().Hex(), toAddress) {
		log.Warn().Str("expected_to", toAddress).Msg("recipient mismatch")
		return false, nil
	}

	receipt, err := b.client.TransactionReceipt(ctx, common.HexToHash(txnHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return false, nil
		}
		return false, apperror.ErrChainUnavailable(err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		log.Warn().Msg("transaction reverted")
		return false, nil
	}

	// Native coin value, wei -> coin (18 decimals on every supported chain).
	got := decimal.NewFromBigInt(tx.Value(), -18)
	diff := got.Sub(expectedAmount).Abs()
	if diff.GreaterThan(o.tolerance) {
		log.Warn().
			Str("expected", expectedAmount.String()).
			Str("got", got.String()).
			Msg("amount mismatch")
		return false, nil
	}

	log.Info().Str("amount", got.String()).Msg("transaction validated")
	return true, nil
}
