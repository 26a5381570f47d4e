package market

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/shopspring/decimal"
)

// nameLength is the maximum length of collection and token names stored in
// derived tables. Longer names are truncated, the identity hash is always
// computed over the untruncated name.
const nameLength = 128

// CollectionNameSentinel is the synthesized token name used for
// collection-wide events that carry no token name. It keeps identity hashing
// uniform for collection-level bids, it is distinguishable from a real token
// named "COLLECTION" by convention only.
const CollectionNameSentinel = "COLLECTION"

// TokenDataID is the stable identity of a token: creator address, collection
// name and token name. Immutable value type.
type TokenDataID struct {
	Creator    string
	Collection string
	Name       string
}

func (t *TokenDataID) UnmarshalJSON(data []byte) error {
	var raw struct {
		Creator    *string `json:"creator"`
		Collection *string `json:"collection"`
		Name       *string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "failed to unmarshal token data id")
	}
	if raw.Creator == nil || raw.Collection == nil || raw.Name == nil {
		return errors.Wrap(errs.InvalidArgument, "token data id requires creator, collection and name fields")
	}
	t.Creator = *raw.Creator
	t.Collection = *raw.Collection
	t.Name = *raw.Name
	return nil
}

func (t TokenDataID) String() string {
	return fmt.Sprintf("%s::%s::%s", t.Creator, t.Collection, t.Name)
}

// Hash returns the stable primary-key string for this token: the hex-encoded
// SHA-256 of the display form.
func (t TokenDataID) Hash() string {
	return hashString(t.String())
}

func (t TokenDataID) CollectionDataID() CollectionDataID {
	return CollectionDataID{Creator: t.Creator, Name: t.Collection}
}

func (t TokenDataID) CollectionNameTrunc() string {
	return truncateString(t.Collection, nameLength)
}

func (t TokenDataID) NameTrunc() string {
	return truncateString(t.Name, nameLength)
}

// CollectionDataID is the stable identity of a collection, derivable from a
// TokenDataID by dropping the token name.
type CollectionDataID struct {
	Creator string
	Name    string
}

func (c CollectionDataID) String() string {
	return fmt.Sprintf("%s::%s", c.Creator, c.Name)
}

func (c CollectionDataID) Hash() string {
	return hashString(c.String())
}

// TokenID identifies a specific edition of a token: the token identity plus
// its property version.
type TokenID struct {
	TokenDataID     TokenDataID
	PropertyVersion decimal.Decimal
}

func (t *TokenID) UnmarshalJSON(data []byte) error {
	var raw struct {
		TokenDataID     *TokenDataID `json:"token_data_id"`
		PropertyVersion *string      `json:"property_version"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "failed to unmarshal token id")
	}
	if raw.TokenDataID == nil || raw.PropertyVersion == nil {
		return errors.Wrap(errs.InvalidArgument, "token id requires token_data_id and property_version fields")
	}
	propertyVersion, err := decimal.NewFromString(*raw.PropertyVersion)
	if err != nil {
		return errors.Wrapf(err, "invalid property version %q", *raw.PropertyVersion)
	}
	t.TokenDataID = *raw.TokenDataID
	t.PropertyVersion = propertyVersion
	return nil
}

func (t TokenID) String() string {
	return fmt.Sprintf("%s::%s", t.TokenDataID, t.PropertyVersion)
}

// TypeInfo is an on-chain move type reference carried by some event payloads,
// e.g. the coin type a bid is denominated in.
type TypeInfo struct {
	AccountAddress string `json:"account_address"`
	ModuleName     string `json:"module_name"`
	StructName     string `json:"struct_name"`
}

func (t TypeInfo) String() string {
	return fmt.Sprintf("%s::%s::%s", t.AccountAddress, t.ModuleName, t.StructName)
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// truncateString truncates s to at most limit runes without splitting a
// multi-byte character.
func truncateString(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
