package market

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ResolvedEvent is the uniform attribute bundle produced by resolving any
// decoded event. Pointer fields are nil when the variant carries no value for
// that attribute.
type ResolvedEvent struct {
	TokenDataID     TokenDataID
	PropertyVersion decimal.Decimal
	FromAddress     *string
	ToAddress       *string
	TokenAmount     decimal.Decimal
	CoinType        *string
	CoinAmount      *decimal.Decimal
}

func (e MintTokenEvent) Resolve(accountAddress string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID: e.ID,
		FromAddress: &accountAddress,
		TokenAmount: e.Amount,
	}
}

func (e BurnTokenEvent) Resolve(accountAddress string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.ID.TokenDataID,
		PropertyVersion: e.ID.PropertyVersion,
		FromAddress:     &accountAddress,
		TokenAmount:     e.Amount,
	}
}

func (e MutateTokenPropertyMapEvent) Resolve(accountAddress string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.NewID.TokenDataID,
		PropertyVersion: e.NewID.PropertyVersion,
		FromAddress:     &accountAddress,
	}
}

func (e WithdrawTokenEvent) Resolve(accountAddress string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.ID.TokenDataID,
		PropertyVersion: e.ID.PropertyVersion,
		FromAddress:     &accountAddress,
		TokenAmount:     e.Amount,
	}
}

func (e DepositTokenEvent) Resolve(accountAddress string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.ID.TokenDataID,
		PropertyVersion: e.ID.PropertyVersion,
		ToAddress:       &accountAddress,
		TokenAmount:     e.Amount,
	}
}

func (e OfferTokenEvent) Resolve(accountAddress string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		FromAddress:     &accountAddress,
		ToAddress:       &e.ToAddress,
		TokenAmount:     e.Amount,
	}
}

func (e CancelTokenOfferEvent) Resolve(accountAddress string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		FromAddress:     &accountAddress,
		ToAddress:       &e.ToAddress,
		TokenAmount:     e.Amount,
	}
}

func (e ClaimTokenEvent) Resolve(accountAddress string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		FromAddress:     &accountAddress,
		ToAddress:       &e.ToAddress,
		TokenAmount:     e.Amount,
	}
}

func (e BlueMoveAuctionEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.ID.TokenDataID,
		PropertyVersion: e.ID.PropertyVersion,
		FromAddress:     &e.OwnerAddress,
		CoinAmount:      &e.MinSellingPrice,
	}
}

func (e BlueMoveBidEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.ID.TokenDataID,
		PropertyVersion: e.ID.PropertyVersion,
		FromAddress:     &e.BiderAddress,
		CoinAmount:      &e.Bid,
	}
}

func (e BlueMoveBuyEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.ID.TokenDataID,
		PropertyVersion: e.ID.PropertyVersion,
		ToAddress:       &e.BuyerAddress,
	}
}

func (e BlueMoveChangePriceEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.ID.TokenDataID,
		PropertyVersion: e.ID.PropertyVersion,
		FromAddress:     &e.SellerAddress,
		CoinAmount:      &e.Amount,
	}
}

func (e BlueMoveClaimCoinsEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.ID.TokenDataID,
		PropertyVersion: e.ID.PropertyVersion,
		FromAddress:     &e.OwnerToken,
	}
}

func (e BlueMoveClaimTokenEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.ID.TokenDataID,
		PropertyVersion: e.ID.PropertyVersion,
		ToAddress:       &e.BiderAddress,
	}
}

func (e BlueMoveDelistEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.ID.TokenDataID,
		PropertyVersion: e.ID.PropertyVersion,
		FromAddress:     &e.SellerAddress,
	}
}

func (e BlueMoveListEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.ID.TokenDataID,
		PropertyVersion: e.ID.PropertyVersion,
		FromAddress:     &e.SellerAddress,
		TokenAmount:     e.Amount,
	}
}

func (e TopazBidEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		FromAddress:     &e.Buyer,
		TokenAmount:     e.Amount,
		CoinType:        lo.ToPtr(e.CoinType.String()),
		CoinAmount:      &e.Price,
	}
}

func (e TopazBuyEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		FromAddress:     &e.Seller,
		ToAddress:       &e.Buyer,
		TokenAmount:     e.Amount,
		CoinAmount:      &e.Price,
	}
}

func (e TopazCancelBidEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		FromAddress:     &e.Buyer,
		TokenAmount:     e.Amount,
		CoinType:        lo.ToPtr(e.CoinType.String()),
		CoinAmount:      &e.Price,
	}
}

func (e TopazCancelCollectionBidEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID: TokenDataID{
			Creator:    e.Creator,
			Collection: e.CollectionName,
			Name:       CollectionNameSentinel,
		},
		FromAddress: &e.Buyer,
		TokenAmount: e.Amount,
		CoinType:    lo.ToPtr(e.CoinType.String()),
		CoinAmount:  &e.Price,
	}
}

func (e TopazClaimEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		ToAddress:       &e.Receiver,
	}
}

func (e TopazCollectionBidEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID: TokenDataID{
			Creator:    e.Creator,
			Collection: e.CollectionName,
			Name:       CollectionNameSentinel,
		},
		FromAddress: &e.Buyer,
		TokenAmount: e.Amount,
		CoinType:    lo.ToPtr(e.CoinType.String()),
		CoinAmount:  &e.Price,
	}
}

func (e TopazDelistEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		FromAddress:     &e.Seller,
		TokenAmount:     e.Amount,
		CoinAmount:      &e.Price,
	}
}

func (e TopazListEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		FromAddress:     &e.Seller,
		TokenAmount:     e.Amount,
		CoinAmount:      &e.Price,
	}
}

func (e TopazSellEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		FromAddress:     &e.Seller,
		ToAddress:       &e.Buyer,
		TokenAmount:     e.Amount,
		CoinType:        lo.ToPtr(e.CoinType.String()),
		CoinAmount:      &e.Price,
	}
}

func (e TopazSendEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		FromAddress:     &e.Sender,
		ToAddress:       &e.Receiver,
		TokenAmount:     e.Amount,
	}
}

func (e Souffl3BuyTokenEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		FromAddress:     &e.TokenOwner,
		ToAddress:       &e.Buyer,
		TokenAmount:     e.TokenAmount,
		CoinAmount:      &e.CoinPerToken,
	}
}

func (e Souffl3CancelListTokenEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		TokenAmount:     e.TokenAmount,
	}
}

func (e Souffl3ListTokenEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		FromAddress:     &e.TokenOwner,
		TokenAmount:     e.TokenAmount,
		CoinAmount:      &e.CoinPerToken,
	}
}

func (e Souffl3TokenListEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		TokenAmount:     e.Amount,
		CoinType:        lo.ToPtr(e.CoinTypeInfo.String()),
		CoinAmount:      &e.MinPrice,
	}
}

func (e Souffl3TokenSwapEvent) Resolve(string) ResolvedEvent {
	return ResolvedEvent{
		TokenDataID:     e.TokenID.TokenDataID,
		PropertyVersion: e.TokenID.PropertyVersion,
		ToAddress:       &e.TokenBuyer,
		TokenAmount:     e.TokenAmount,
		CoinType:        lo.ToPtr(e.CoinTypeInfo.String()),
		CoinAmount:      &e.CoinAmount,
	}
}
