package rpc

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgersim/ledgersim/internal/chain"
	"github.com/ledgersim/ledgersim/internal/exchange"
	"github.com/ledgersim/ledgersim/internal/mempool"
	"github.com/ledgersim/ledgersim/internal/utxo"
	"github.com/ledgersim/ledgersim/pkg/tx"
)

// writeError maps a core error to a client status and a stable kind string,
// following the boundary mapping: validation/consensus errors become
// client errors (400/404/409), a backend failure becomes a retryable 503,
// and anything unrecognized falls back to 500.
func writeError(c *gin.Context, err error) {
	status, kind := classify(err)
	c.JSON(status, errorResponse{Error: err.Error(), Kind: kind})
}

func classify(err error) (int, string) {
	var txErr *tx.RejectError
	if errors.As(err, &txErr) {
		return http.StatusBadRequest, string(txErr.Kind)
	}

	var chainErr *chain.RejectError
	if errors.As(err, &chainErr) {
		return http.StatusConflict, string(chainErr.Kind)
	}

	var exErr *exchange.RejectError
	if errors.As(err, &exErr) {
		switch exErr.Kind {
		case exchange.MarketNotFound:
			return http.StatusNotFound, string(exErr.Kind)
		case exchange.InvalidOrder:
			return http.StatusBadRequest, string(exErr.Kind)
		default:
			return http.StatusConflict, string(exErr.Kind)
		}
	}

	if errors.Is(err, mempool.ErrDuplicateMempoolEntry) {
		return http.StatusConflict, "DuplicateMempoolEntry"
	}

	if errors.Is(err, utxo.ErrBackendUnavailable) {
		return http.StatusServiceUnavailable, "BackendUnavailable"
	}

	return http.StatusInternalServerError, "InternalError"
}
