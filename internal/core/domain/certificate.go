package domain

// Collection metadata reported by the ownership registry.
const (
	CollectionName   = "Fundraiser Collection"
	CollectionSymbol = "FRC"
)

// Certificate is the transferable token that confers control over the
// campaign with the same ID.
type Certificate struct {
	ID    uint64
	Owner Address
	URI   string
}
