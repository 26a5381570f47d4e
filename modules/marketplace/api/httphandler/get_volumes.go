package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/marketlens/aptos-indexer/common"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/shopspring/decimal"
)

type getCollectionVolumeRequest struct {
	CollectionDataIdHash string `params:"collectionDataIdHash"`
}

func (r *getCollectionVolumeRequest) Validate() error {
	var errList []error
	if !isIDHash(r.CollectionDataIdHash) {
		errList = append(errList, errors.Errorf("'%s' is not a valid collection data id hash", r.CollectionDataIdHash))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type volumeResult struct {
	Volume                 decimal.Decimal `json:"volume"`
	LastTransactionVersion int64           `json:"lastTransactionVersion"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

type getVolumeResponse = common.HttpResponse[volumeResult]

func (h *HttpHandler) GetCollectionVolume(ctx *fiber.Ctx) (err error) {
	var req getCollectionVolumeRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	volume, err := h.marketplaceDg.GetCollectionVolume(ctx.UserContext(), req.CollectionDataIdHash)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("collection volume not found")
		}
		return errors.Wrap(err, "error during GetCollectionVolume")
	}

	result := volumeResult{
		Volume:                 volume.Volume,
		LastTransactionVersion: volume.LastTransactionVersion,
		UpdatedAt:              volume.InsertedAt,
	}
	return errors.WithStack(ctx.JSON(getVolumeResponse{
		Result: &result,
	}))
}

type getTokenVolumeRequest struct {
	TokenDataIdHash string `params:"tokenDataIdHash"`
}

func (r *getTokenVolumeRequest) Validate() error {
	var errList []error
	if !isIDHash(r.TokenDataIdHash) {
		errList = append(errList, errors.Errorf("'%s' is not a valid token data id hash", r.TokenDataIdHash))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (h *HttpHandler) GetTokenVolume(ctx *fiber.Ctx) (err error) {
	var req getTokenVolumeRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	volume, err := h.marketplaceDg.GetTokenVolume(ctx.UserContext(), req.TokenDataIdHash)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("token volume not found")
		}
		return errors.Wrap(err, "error during GetTokenVolume")
	}

	result := volumeResult{
		Volume:                 volume.Volume,
		LastTransactionVersion: volume.LastTransactionVersion,
		UpdatedAt:              volume.InsertedAt,
	}
	return errors.WithStack(ctx.JSON(getVolumeResponse{
		Result: &result,
	}))
}
