package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/marketlens/aptos-indexer/common"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/marketlens/aptos-indexer/modules/marketplace/internal/entity"
	"github.com/samber/lo"
)

const (
	getListingsByCollectionMaxLimit     = 1000
	getListingsByCollectionDefaultLimit = 100
)

type getListingsByCollectionRequest struct {
	CollectionDataIdHash string `params:"collectionDataIdHash"`
	Limit                int32  `query:"limit"`
	Offset               int32  `query:"offset"`
}

func (r *getListingsByCollectionRequest) Validate() error {
	var errList []error
	if !isIDHash(r.CollectionDataIdHash) {
		errList = append(errList, errors.Errorf("'%s' is not a valid collection data id hash", r.CollectionDataIdHash))
	}
	if r.Limit < 0 {
		errList = append(errList, errors.New("'limit' must be non-negative"))
	}
	if r.Limit > getListingsByCollectionMaxLimit {
		errList = append(errList, errors.Errorf("'limit' cannot exceed %d", getListingsByCollectionMaxLimit))
	}
	if r.Offset < 0 {
		errList = append(errList, errors.New("'offset' must be non-negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (r *getListingsByCollectionRequest) ParseDefault() error {
	if r.Limit == 0 {
		r.Limit = getListingsByCollectionDefaultLimit
	}
	return nil
}

type getListingsByCollectionResult struct {
	List []listing `json:"list"`
}

type getListingsByCollectionResponse = common.HttpResponse[getListingsByCollectionResult]

func (h *HttpHandler) GetListingsByCollection(ctx *fiber.Ctx) (err error) {
	var req getListingsByCollectionRequest
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

	listings, err := h.marketplaceDg.GetListingsByCollectionDataIDHash(ctx.UserContext(), req.CollectionDataIdHash, req.Limit, req.Offset)
	if err != nil {
		return errors.Wrap(err, "error during GetListingsByCollectionDataIDHash")
	}

	result := getListingsByCollectionResult{
		List: lo.Map(listings, func(src *entity.CurrentMarketplaceListing, _ int) listing {
			return mapListing(src)
		}),
	}
	return errors.WithStack(ctx.JSON(getListingsByCollectionResponse{
		Result: &result,
	}))
}
