package httphandler

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/marketlens/aptos-indexer/common"
	"github.com/marketlens/aptos-indexer/common/errs"
	"golang.org/x/sync/errgroup"
)

type getListingsBatchRequest struct {
	TokenDataIdHashes []string `json:"tokenDataIdHashes"`
}

const getListingsBatchMaxQueries = 100

func (r getListingsBatchRequest) Validate() error {
	var errList []error
	if len(r.TokenDataIdHashes) == 0 {
		errList = append(errList, errors.New("at least one token data id hash is required"))
	}
	if len(r.TokenDataIdHashes) > getListingsBatchMaxQueries {
		errList = append(errList, errors.Errorf("cannot exceed %d token data id hashes", getListingsBatchMaxQueries))
	}
	for i, hash := range r.TokenDataIdHashes {
		if !isIDHash(hash) {
			errList = append(errList, errors.Errorf("tokenDataIdHashes[%d]: '%s' is not a valid token data id hash", i, hash))
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getListingsBatchResult struct {
	// List holds one entry per requested hash, in request order. Tokens that
	// have never been listed yield a null entry.
	List []*listing `json:"list"`
}

type getListingsBatchResponse = common.HttpResponse[getListingsBatchResult]

func (h *HttpHandler) GetListingsBatch(ctx *fiber.Ctx) (err error) {
	var req getListingsBatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	processQuery := func(ctx context.Context, tokenDataIDHash string) (*listing, error) {
		current, err := h.marketplaceDg.GetListingByTokenDataIDHash(ctx, tokenDataIDHash)
		if err != nil {
			if errors.Is(err, errs.NotFound) {
				return nil, nil
			}
			return nil, errors.Wrap(err, "error during GetListingByTokenDataIDHash")
		}
		result := mapListing(current)
		return &result, nil
	}

	results := make([]*listing, len(req.TokenDataIdHashes))
	eg, ectx := errgroup.WithContext(ctx.UserContext())
	for i, hash := range req.TokenDataIdHashes {
		i := i
		hash := hash
		eg.Go(func() error {
			result, err := processQuery(ectx, hash)
			if err != nil {
				return errors.Wrapf(err, "error during processQuery for query %d", i)
			}
			results[i] = result
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(ctx.JSON(getListingsBatchResponse{
		Result: &getListingsBatchResult{
			List: results,
		},
	}))
}
