package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/marketlens/aptos-indexer/common"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/entity"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	getTokenActivitiesMaxLimit     = 1000
	getTokenActivitiesDefaultLimit = 100
)

type getTokenActivitiesRequest struct {
	TokenDataIdHash string `params:"tokenDataIdHash"`
	Limit           int32  `query:"limit"`
	Offset          int32  `query:"offset"`
}

func (r *getTokenActivitiesRequest) Validate() error {
	var errList []error
	if !isIDHash(r.TokenDataIdHash) {
		errList = append(errList, errors.Errorf("'%s' is not a valid token data id hash", r.TokenDataIdHash))
	}
	if r.Limit < 0 {
		errList = append(errList, errors.New("'limit' must be non-negative"))
	}
	if r.Limit > getTokenActivitiesMaxLimit {
		errList = append(errList, errors.Errorf("'limit' cannot exceed %d", getTokenActivitiesMaxLimit))
	}
	if r.Offset < 0 {
		errList = append(errList, errors.New("'offset' must be non-negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (r *getTokenActivitiesRequest) ParseDefault() error {
	if r.Limit == 0 {
		r.Limit = getTokenActivitiesDefaultLimit
	}
	return nil
}

type tokenActivity struct {
	TransactionVersion int64            `json:"transactionVersion"`
	EventType          string           `json:"eventType"`
	PropertyVersion    decimal.Decimal  `json:"propertyVersion"`
	CreatorAddress     string           `json:"creatorAddress"`
	CollectionName     string           `json:"collectionName"`
	Name               string           `json:"name"`
	FromAddress        *string          `json:"fromAddress"`
	ToAddress          *string          `json:"toAddress"`
	TokenAmount        decimal.Decimal  `json:"tokenAmount"`
	CoinType           *string          `json:"coinType"`
	CoinAmount         *decimal.Decimal `json:"coinAmount"`
	Timestamp          time.Time        `json:"timestamp"`
}

type getTokenActivitiesResult struct {
	List []tokenActivity `json:"list"`
}

type getTokenActivitiesResponse = common.HttpResponse[getTokenActivitiesResult]

func (h *HttpHandler) GetTokenActivities(ctx *fiber.Ctx) (err error) {
	var req getTokenActivitiesRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	if err := req.ParseDefault(); err != nil {
		return errors.WithStack(err)
	}

	activities, err := h.marketplaceDg.GetTokenActivities(ctx.UserContext(), req.TokenDataIdHash, req.Limit, req.Offset)
	if err != nil {
		return errors.Wrap(err, "error during GetTokenActivities")
	}

	result := getTokenActivitiesResult{
		List: lo.Map(activities, func(src *entity.TokenActivity, _ int) tokenActivity {
			return tokenActivity{
				TransactionVersion: src.TransactionVersion,
				EventType:          src.TransferType,
				PropertyVersion:    src.PropertyVersion,
				CreatorAddress:     src.CreatorAddress,
				CollectionName:     src.CollectionName,
				Name:               src.Name,
				FromAddress:        src.FromAddress,
				ToAddress:          src.ToAddress,
				TokenAmount:        src.TokenAmount,
				CoinType:           src.CoinType,
				CoinAmount:         src.CoinAmount,
				Timestamp:          src.TransactionTimestamp,
			}
		}),
	}
	return errors.WithStack(ctx.JSON(getTokenActivitiesResponse{
		Result: &result,
	}))
}
