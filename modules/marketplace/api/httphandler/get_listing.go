package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/marketlens/aptos-indexer/common"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/entity"
	"github.com/shopspring/decimal"
)

type getListingRequest struct {
	TokenDataIdHash string `params:"tokenDataIdHash"`
}

func (r *getListingRequest) Validate() error {
	var errList []error
	if !isIDHash(r.TokenDataIdHash) {
		errList = append(errList, errors.Errorf("'%s' is not a valid token data id hash", r.TokenDataIdHash))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type listing struct {
	TokenDataIdHash        string          `json:"tokenDataIdHash"`
	CollectionDataIdHash   string          `json:"collectionDataIdHash"`
	PropertyVersion        decimal.Decimal `json:"propertyVersion"`
	CreatorAddress         string          `json:"creatorAddress"`
	CollectionName         string          `json:"collectionName"`
	Name                   string          `json:"name"`
	MarketAddress          string          `json:"marketAddress"`
	Active                 bool            `json:"active"`
	Seller                 string          `json:"seller"`
	Price                  decimal.Decimal `json:"price"`
	Amount                 decimal.Decimal `json:"amount"`
	EventType              string          `json:"eventType"`
	LastTransactionVersion int64           `json:"lastTransactionVersion"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

func mapListing(src *entity.CurrentMarketplaceListing) listing {
	return listing{
		TokenDataIdHash:        src.TokenDataIDHash,
		CollectionDataIdHash:   src.CollectionDataIDHash,
		PropertyVersion:        src.PropertyVersion,
		CreatorAddress:         src.CreatorAddress,
		CollectionName:         src.CollectionName,
		Name:                   src.Name,
		MarketAddress:          src.MarketAddress,
		Active:                 src.MarketAddress != "",
		Seller:                 src.Seller,
		Price:                  src.Price,
		Amount:                 src.Amount,
		EventType:              src.EventType,
		LastTransactionVersion: src.LastTransactionVersion,
		UpdatedAt:              src.InsertedAt,
	}
}

type getListingResult = listing

type getListingResponse = common.HttpResponse[getListingResult]

func (h *HttpHandler) GetListing(ctx *fiber.Ctx) (err error) {
	var req getListingRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	current, err := h.marketplaceDg.GetListingByTokenDataIDHash(ctx.UserContext(), req.TokenDataIdHash)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("listing not found")
		}
		return errors.Wrap(err, "error during GetListingByTokenDataIDHash")
	}

	result := mapListing(current)
	return errors.WithStack(ctx.JSON(getListingResponse{
		Result: &result,
	}))
}
