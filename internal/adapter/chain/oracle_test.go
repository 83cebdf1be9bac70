package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"promo-order-bot/internal/core/domain"
	"promo-order-bot/pkg/apperror"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWallet = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	testHash   = "0xabcd123456789012345678901234567890123456789012345678901234567890"
)

// stubClient returns canned responses for one transaction.
type stubClient struct {
	tx        *types.Transaction
	pending   bool
	txErr     error
	receipt   *types.Receipt
	recErr    error
	callCount int
}

func (s *stubClient) TransactionByHash(_ context.Context, _ common.Hash) (*types.Transaction, bool, error) {
	s.callCount++
	return s.tx, s.pending, s.txErr
}

func (s *stubClient) TransactionReceipt(_ context.Context, _ common.Hash) (*types.Receipt, error) {
	return s.receipt, s.recErr
}

// coin converts a decimal coin amount into a wei big.Int.
func coin(t *testing.T, amount string) *big.Int {
	t.Helper()
	d := decimal.RequireFromString(amount).Shift(18)
	return d.BigInt()
}

func transferTx(to string, value *big.Int) *types.Transaction {
	addr := common.HexToAddress(to)
	return types.NewTx(&types.LegacyTx{
		Nonce:    1,
		To:       &addr,
		Value:    value,
		Gas:      21000,
		GasPrice: big.NewInt(1),
	})
}

func newTestOracle(client rpcClient) *Oracle {
	return newOracleWithBackends(
		map[domain.Network]networkBackend{
			domain.NetworkBSC: {client: client, wallet: testWallet},
		},
		decimal.RequireFromString("0.001"),
		zerolog.Nop(),
	)
}

func TestValidate_Success(t *testing.T) {
	client := &stubClient{
		tx:      transferTx(testWallet, coin(t, "50")),
		receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful},
	}
	o := newTestOracle(client)

	ok, err := o.Validate(context.Background(), testHash, domain.NetworkBSC, decimal.RequireFromString("50"), testWallet)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidate_WithinTolerance(t *testing.T) {
	client := &stubClient{
		tx:      transferTx(testWallet, coin(t, "50.0005")),
		receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful},
	}
	o := newTestOracle(client)

	ok, err := o.Validate(context.Background(), testHash, domain.NetworkBSC, decimal.RequireFromString("50"), testWallet)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidate_AmountOutsideTolerance(t *testing.T) {
	client := &stubClient{
		tx:      transferTx(testWallet, coin(t, "50.03")),
		receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful},
	}
	o := newTestOracle(client)

	ok, err := o.Validate(context.Background(), testHash, domain.NetworkBSC, decimal.RequireFromString("50"), testWallet)
	require.NoError(t, err)
	assert.False(t, ok, "underpayment beyond tolerance must not validate")
}

func TestValidate_MalformedHashSkipsRPC(t *testing.T) {
	client := &stubClient{}
	o := newTestOracle(client)

	for _, hash := range []string{"", "0x123", "deadbeef", "0x" + "zz" + testHash[4:]} {
		ok, err := o.Validate(context.Background(), hash, domain.NetworkBSC, decimal.New(50, 0), testWallet)
		assert.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Zero(t, client.callCount, "malformed hashes must never reach the RPC")
}

func TestValidate_RecipientMismatch(t *testing.T) {
	client := &stubClient{
		tx:      transferTx("0x0000000000000000000000000000000000000001", coin(t, "50")),
		receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful},
	}
	o := newTestOracle(client)

	ok, err := o.Validate(context.Background(), testHash, domain.NetworkBSC, decimal.New(50, 0), testWallet)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidate_RecipientCaseInsensitive(t *testing.T) {
	client := &stubClient{
		tx:      transferTx(testWallet, coin(t, "50")),
		receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful},
	}
	o := newTestOracle(client)

	ok, err := o.Validate(context.Background(), testHash, domain.NetworkBSC, decimal.New(50, 0), "0X742D35CC6634C0532925A3B844BC454E4438F44E")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidate_NotFoundIsNotAnError(t *testing.T) {
	client := &stubClient{txErr: ethereum.NotFound}
	o := newTestOracle(client)

	ok, err := o.Validate(context.Background(), testHash, domain.NetworkBSC, decimal.New(50, 0), testWallet)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestValidate_PendingTransaction(t *testing.T) {
	client := &stubClient{tx: transferTx(testWallet, coin(t, "50")), pending: true}
	o := newTestOracle(client)

	ok, err := o.Validate(context.Background(), testHash, domain.NetworkBSC, decimal.New(50, 0), testWallet)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestValidate_RevertedTransaction(t *testing.T) {
	client := &stubClient{
		tx:      transferTx(testWallet, coin(t, "50")),
		receipt: &types.Receipt{Status: types.ReceiptStatusFailed},
	}
	o := newTestOracle(client)

	ok, err := o.Validate(context.Background(), testHash, domain.NetworkBSC, decimal.New(50, 0), testWallet)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidate_TransportError(t *testing.T) {
	client := &stubClient{txErr: errors.New("connection refused")}
	o := newTestOracle(client)

	ok, err := o.Validate(context.Background(), testHash, domain.NetworkBSC, decimal.New(50, 0), testWallet)
	assert.False(t, ok)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_002", appErr.Code)
}

func TestValidate_UnsupportedNetwork(t *testing.T) {
	o := newTestOracle(&stubClient{})

	ok, err := o.Validate(context.Background(), testHash, domain.NetworkEthereum, decimal.New(50, 0), testWallet)
	assert.False(t, ok)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PAY_002", appErr.Code)
}

func TestWalletAddress(t *testing.T) {
	o := newTestOracle(&stubClient{})

	addr, err := o.WalletAddress(domain.NetworkBSC)
	require.NoError(t, err)
	assert.Equal(t, testWallet, addr)

	_, err = o.WalletAddress(domain.NetworkBase)
	assert.Error(t, err)
}
