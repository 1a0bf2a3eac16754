package market

import "github.com/xraph/market/id"

// ID is the primary identifier type for all Market entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
