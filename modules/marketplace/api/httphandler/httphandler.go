package httphandler

import (
	"encoding/hex"

	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/datagateway"
)

type HttpHandler struct {
	marketplaceDg datagateway.MarketplaceReaderDataGateway
}

func New(marketplaceDg datagateway.MarketplaceReaderDataGateway) *HttpHandler {
	return &HttpHandler{
		marketplaceDg: marketplaceDg,
	}
}

// isIDHash reports whether s looks like a hex-encoded SHA-256 identity hash.
func isIDHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
