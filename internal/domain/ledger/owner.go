package ledger

import "fmt"

type OwnerKind string

const (
	OwnerBank       OwnerKind = "bank"
	OwnerPerson     OwnerKind = "person"
	OwnerFactory    OwnerKind = "factory"
	OwnerMarket     OwnerKind = "market"
	OwnerGovernment OwnerKind = "government"
)

// OwnerRef identifies the economic actor holding an account. Kind selects
// the population the ID is resolved against.
type OwnerRef struct {
	Kind OwnerKind `gorm:"column:kind;size:16;not null;index:idx_accounts_owner" json:"kind"`
	ID   uint64    `gorm:"column:id;not null;index:idx_accounts_owner" json:"id"`
}

func BankOwner(id uint64) OwnerRef       { return OwnerRef{Kind: OwnerBank, ID: id} }
func PersonOwner(id uint64) OwnerRef     { return OwnerRef{Kind: OwnerPerson, ID: id} }
func FactoryOwner(id uint64) OwnerRef    { return OwnerRef{Kind: OwnerFactory, ID: id} }
func MarketOwner(id uint64) OwnerRef     { return OwnerRef{Kind: OwnerMarket, ID: id} }
func GovernmentOwner(id uint64) OwnerRef { return OwnerRef{Kind: OwnerGovernment, ID: id} }

func (o OwnerRef) IsZero() bool { return o.Kind == "" || o.ID == 0 }

func (o OwnerRef) Valid() bool {
	switch o.Kind {
	case OwnerBank, OwnerPerson, OwnerFactory, OwnerMarket, OwnerGovernment:
		return o.ID != 0
	}
	return false
}

func (o OwnerRef) String() string { return fmt.Sprintf("%s:%d", o.Kind, o.ID) }
