package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/marketplace")

	r.Get("/listings/collection/:collectionDataIdHash", h.GetListingsByCollection)
	r.Post("/listings/batch", h.GetListingsBatch)
	r.Get("/listings/:tokenDataIdHash", h.GetListing)
	r.Get("/volumes/collection/:collectionDataIdHash", h.GetCollectionVolume)
	r.Get("/volumes/token/:tokenDataIdHash", h.GetTokenVolume)
	r.Get("/activities/:tokenDataIdHash", h.GetTokenActivities)
	return nil
}
