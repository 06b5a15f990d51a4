package jsonrpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/pkg/circuitbreaker"
)

var (
	// ErrMissingURL ...
	ErrMissingURL = errors.New("missing rpc url")
	// ErrChainNotSupported ...
	ErrChainNotSupported = errors.New("chain id not supported")
	// ErrChainIDMismatch is returned when the node behind an url serves
	// another chain than the one it is configured for.
	ErrChainIDMismatch = errors.New("node chain id mismatch")
	// ErrInvalidAddress ...
	ErrInvalidAddress = errors.New("invalid address")
)

type service struct {
	urls map[uint64]string
	cb   *gobreaker.CircuitBreaker

	lock    sync.Mutex
	clients map[uint64]*ethclient.Client
}

// Service is an EvmService that keeps one connection per chain id. Close
// releases all of them.
type Service interface {
	ports.EvmService
	Close()
}

// NewService returns a Service relaying to the nodes listening at urls,
// indexed by chain id. Connections are opened on first use.
func NewService(urls map[uint64]string) (Service, error) {
	if len(urls) == 0 {
		return nil, ErrMissingURL
	}
	cpy := make(map[uint64]string, len(urls))
	for chainID, url := range urls {
		if chainID == 0 {
			return nil, ErrChainNotSupported
		}
		if url == "" {
			return nil, fmt.Errorf("%w for chain %d", ErrMissingURL, chainID)
		}
		cpy[chainID] = url
	}

	return &service{
		urls:    cpy,
		cb:      circuitbreaker.New("evm-rpc"),
		clients: make(map[uint64]*ethclient.Client),
	}, nil
}

func (s *service) GetBalance(
	ctx context.Context, chainID uint64, address string,
) (*big.Int, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	res, err := s.call(ctx, chainID, func(c *ethclient.Client) (interface{}, error) {
		return c.BalanceAt(ctx, addr, nil)
	})
	if err != nil {
		return nil, err
	}
	return res.(*big.Int), nil
}

func (s *service) GetNonce(
	ctx context.Context, chainID uint64, address string,
) (uint64, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return 0, err
	}
	res, err := s.call(ctx, chainID, func(c *ethclient.Client) (interface{}, error) {
		return c.PendingNonceAt(ctx, addr)
	})
	if err != nil {
		return 0, err
	}
	return res.(uint64), nil
}

func (s *service) SuggestGasPrice(
	ctx context.Context, chainID uint64,
) (*big.Int, error) {
	res, err := s.call(ctx, chainID, func(c *ethclient.Client) (interface{}, error) {
		return c.SuggestGasPrice(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.(*big.Int), nil
}

func (s *service) SuggestGasTipCap(
	ctx context.Context, chainID uint64,
) (*big.Int, error) {
	res, err := s.call(ctx, chainID, func(c *ethclient.Client) (interface{}, error) {
		return c.SuggestGasTipCap(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.(*big.Int), nil
}

func (s *service) SendRawTransaction(
	ctx context.Context, chainID uint64, rawTx []byte,
) (string, error) {
	tx := &types.Transaction{}
	if err := tx.UnmarshalBinary(rawTx); err != nil {
		return "", fmt.Errorf("invalid raw transaction: %w", err)
	}
	if _, err := s.call(ctx, chainID, func(c *ethclient.Client) (interface{}, error) {
		return nil, c.SendTransaction(ctx, tx)
	}); err != nil {
		return "", err
	}
	return tx.Hash().Hex(), nil
}

func (s *service) IsConfirmed(
	ctx context.Context, chainID uint64, txHash string,
) (bool, error) {
	hash := common.HexToHash(txHash)
	res, err := s.call(ctx, chainID, func(c *ethclient.Client) (interface{}, error) {
		receipt, err := c.TransactionReceipt(ctx, hash)
		if errors.Is(err, ethereum.NotFound) {
			return (*types.Receipt)(nil), nil
		}
		return receipt, err
	})
	if err != nil {
		return false, err
	}

	receipt := res.(*types.Receipt)
	if receipt == nil {
		return false, nil
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		log.WithFields(log.Fields{
			"chain_id": chainID,
			"tx":       txHash,
		}).Warn("transaction included but reverted")
		return false, nil
	}
	return true, nil
}

func (s *service) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for chainID, c := range s.clients {
		c.Close()
		delete(s.clients, chainID)
	}
}

func (s *service) call(
	ctx context.Context, chainID uint64,
	fn func(c *ethclient.Client) (interface{}, error),
) (interface{}, error) {
	c, err := s.client(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return s.cb.Execute(func() (interface{}, error) {
		return fn(c)
	})
}

func (s *service) client(
	ctx context.Context, chainID uint64,
) (*ethclient.Client, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if c, ok := s.clients[chainID]; ok {
		return c, nil
	}
	url, ok := s.urls[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrChainNotSupported, chainID)
	}

	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rpc of chain %d: %w", chainID, err)
	}
	nodeChainID, err := c.ChainID(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to get chain id from rpc: %w", err)
	}
	if !nodeChainID.IsUint64() || nodeChainID.Uint64() != chainID {
		c.Close()
		return nil, fmt.Errorf(
			"%w: expected %d, got %s", ErrChainIDMismatch, chainID, nodeChainID,
		)
	}

	log.Debugf("connected to rpc of chain %d", chainID)
	s.clients[chainID] = c
	return c, nil
}

func parseAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, ErrInvalidAddress
	}
	return common.HexToAddress(address), nil
}
